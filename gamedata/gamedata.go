// Package gamedata holds the fixed enumerations of ZanZarah's data files:
// element classes, mana levels, fairy glows, spell effects, animations and
// card kinds. Script arguments and database columns store indices into
// these tables.
//
// Lookups take the raw argument token and never fail; a token that is not
// a number or lies outside the table yields Unresolved.
package gamedata

import (
	"fmt"
	"strconv"
)

const (
	// Unresolved is shown wherever an identifier or index cannot be mapped
	// to a description.
	Unresolved = "NULL"

	// None is the "no value" entry at the start of several tables.
	None = "-/-"
)

// Table is an ordered enumeration. The order is significant: entries are
// addressed by index.
type Table struct {
	Name    string
	Entries []string
}

// Lookup returns the entry addressed by token.
func (t *Table) Lookup(token string) string {
	idx, err := strconv.Atoi(token)
	if err != nil || idx < 0 || idx >= len(t.Entries) {
		return Unresolved
	}
	return t.Entries[idx]
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.Entries)
}

// ElementClasses indexes the element class of fairies and spells.
var ElementClasses = &Table{
	Name: "elements",
	Entries: []string{
		None, "Nature", "Air", "Water", "Light", "Energy",
		"Psi", "Stone", "Ice", "Fire", "Dark", "Chaos", "Metal",
		"✱",
	},
}

// ManaLevels are the mana amounts of a spell's mana class. The entry
// after the last level means "none".
var ManaLevels = &Table{
	Name:    "mana",
	Entries: []string{"5", "15", "30", "40", "55", None},
}

// glow is a visual fairy effect and how strongly it is rendered.
type glow struct {
	Name      string
	Intensity int
}

var glows = []glow{
	{None, 0},
	{"White sparkles (teleport)", 3},
	{"Key unlock animation", 2},
	{"White ice", 1},
	{"Blue particles (item effect)", 2},
	{"Grey stones", 3},
	{"Green rays with blue particles", 2},
	{"Blue/white water bubbles (nature card animation)", 3},
	{"Red with fire particles", 1},
	{"Purple with lightning", 1},
	{"Green", 1},
	{"Grey-turquoise sphere with greyish particles", 1},
	{"Orange with pink particles", 1},
	{"Blue with waves", 1},
	{"Red with purple particles", 1},
	{"Green with big orange particles", 3},
	{"Purple glow with lightblue particles", 3},
	{"White glow with purple outline and big particles", 3},
	{"White glow with falling particles", 1},
	{"White air vortex (jumping swirls)", 2},
	{"White glow (teleport trigger)", 3},
	{"Yellow sparkles (trigger for secrets)", 2},
	{"Purple", 2},
	{"Blue light swirl", 2},
	{"Green with weak orange particles", 2},
	{"Grey stones", 2},
	{"Red with fire particles (fast)", 1},
	{"Rain cloud with lightning", 2},
	{"Orange prison sphere", 3},
	{"Grey stones", 1},
	{"Purple sphere with rays", 2},
	{"Orange sphere with yellow rays", 2},
	{"Blue sphere with rays", 2},
	{"Purple laser (fairy catch animation)", 2},
	{"Blue weak bubbles", 1},
	{"Blue particles", 2},
	{"Purple particles", 2},
	{"Blue with purple particles", 1},
	{"Grey dust", 1},
}

// FairyGlows lists every glow with its intensity as "name (intensity n)".
var FairyGlows = func() *Table {
	entries := make([]string, len(glows))
	for i, g := range glows {
		entries[i] = fmt.Sprintf("%s (intensity %d)", g.Name, g.Intensity)
	}
	return &Table{Name: "glows", Entries: entries}
}()

// ActiveSpellCritEffects are the critical-hit effects of attack spells.
var ActiveSpellCritEffects = &Table{
	Name: "crit-effects",
	Entries: []string{
		None,
		"20% higher chance for a critical hit",
		"40% higher chance for a critical hit",
		"60% higher chance for a critical hit",
		"80% higher chance for a critical hit",
		"100% higher chance for a critical hit",
		"Extra 5 damage",
		"Extra 10 damage",
		"Extra 25 damage",
		"Extra 30 damage",
		"Extra 50 damage",
		"20% Slower movement",
		"40% Slower movement",
		"60% Slower movement",
		"80% Slower movement",
		"100% Slower movement",
		"20% Slower cast speed",
		"40% Slower cast speed",
		"60% Slower cast speed",
		"80% Slower cast speed",
		"100% Slower cast speed",
		"50% Less jump power",
		"100% Less jump power",
		"20% Mana loss",
		"40% Mana loss",
		"60% Mana loss",
		"80% Mana loss",
		"100% Mana loss",
		"Disable attack spells",
		"Disable support spell",
		"Disable jumping",
		"Enemy spins around",
		"Condition: poison",
		"Condition: burn",
		"Condition: curse",
		"Condition: frozen",
		"Condition: silent",
		"Enemy can't land critical hits",
		"Instant spell burst",
		"Enemy takes own damage",
		"Invert control",
		"Teleport enemy to a random location",
		"Enemy is blinded",
	},
}

// PassiveSpellEffects are the effects of support spells.
var PassiveSpellEffects = &Table{
	Name: "passive-effects",
	Entries: []string{
		None,
		"Receive 20% less damage",
		"Receive 50% less damage",
		"Receive 80% less damage",
		"Receive 100% less damage",
		"20% more damage",
		"40% more damage",
		"60% more damage",
		"80% more damage",
		"100% more damage",
		"20% more damage in case of a critical hit",
		"40% more damage in case of a critical hit",
		"60% more damage in case of a critical hit",
		"80% more damage in case of a critical hit",
		"100% more damage in case of a critical hit",
		"??? 20% more damage in case of a critical hit",
		"??? 40% more damage in case of a critical hit",
		"??? 60% more damage in case of a critical hit",
		"??? 80% more damage in case of a critical hit",
		"??? 100% more damage in case of a critical hit",
		"20% faster cast speed",
		"40% faster cast speed",
		"60% faster cast speed",
		"80% faster cast speed",
		"100% faster cast speed",
		"20% higher chance for a critical hit",
		"40% higher chance for a critical hit",
		"60% higher chance for a critical hit",
		"80% higher chance for a critical hit",
		"100% higher chance for a critical hit",
		"15% faster movement",
		"30% faster movement",
		"45% faster movement",
		"60% faster movement",
		"75% faster movement",
		"20% faster jump power loadup",
		"40% faster jump power loadup",
		"60% faster jump power loadup",
		"80% faster jump power loadup",
		"100% faster jump power loadup",
		"Heal 1 hitpoint",
		"Heal 5 hitpoint",
		"Heal 10 hitpoint",
		"Heal 20 hitpoint",
		"Heal 50 hitpoint",
		"Critical hits have no effect",
		"Received damage is also applied to enemy",
		"Reflect damage",
		"Use support spell instead off jumppower",
		"Can't be poisoned",
		"Can't be frozen",
		"Can't be silenced",
		"Can't be cursed",
		"Can't be burned",
		"Prevents status changes",
	},
}

// Animations are the actor animation types, see zzio's AnimationType.
var Animations = &Table{
	Name: "animations",
	Entries: []string{
		"Idle0", "Jump", "Run", "RunForwardLeft", "RunForwardRight", "Back",
		"Dance", "Fall", "Rotate", "Right", "Left", "Idle1", "Idle2", "Talk0",
		"Talk1", "Talk2", "Talk3", "Walk0", "Walk1", "Walk2", "SpecialIdle0",
		"SpecialIdle1", "SpecialIdle2", "FlyForward", "FlyBack", "FlyLeft",
		"FlyRight", "Loadup", "Hit", "Joy", "ThudGround", "UseFairyPipe",
		"UseSeaShell", "Smith", "Astonished", "Surprise0", "Surprise1", "Stop",
		"ThudGround2", "PixieFlounder", "JumpHigh",
	},
}

// Tables returns every indexed enumeration, for listing.
func Tables() []*Table {
	return []*Table{
		ElementClasses,
		ManaLevels,
		FairyGlows,
		ActiveSpellCritEffects,
		PassiveSpellEffects,
		Animations,
	}
}

// TableByName finds one of Tables by its Name.
func TableByName(name string) (*Table, bool) {
	for _, t := range Tables() {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}
