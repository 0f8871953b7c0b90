package gamedata

import "testing"

func TestTableLookup(t *testing.T) {
	tests := []struct {
		table *Table
		token string
		want  string
	}{
		{ElementClasses, "0", None},
		{ElementClasses, "1", "Nature"},
		{ElementClasses, "12", "Metal"},
		{ElementClasses, "13", "✱"},
		{ElementClasses, "14", Unresolved},
		{ElementClasses, "99", Unresolved},
		{ElementClasses, "-1", Unresolved},
		{ElementClasses, "x", Unresolved},
		{ElementClasses, "", Unresolved},
		{Animations, "0", "Idle0"},
		{Animations, "40", "JumpHigh"},
		{Animations, "41", Unresolved},
		{ActiveSpellCritEffects, "42", "Enemy is blinded"},
		{ActiveSpellCritEffects, "43", Unresolved},
		{PassiveSpellEffects, "54", "Prevents status changes"},
		{PassiveSpellEffects, "55", Unresolved},
	}

	for _, tt := range tests {
		if got := tt.table.Lookup(tt.token); got != tt.want {
			t.Errorf("%s.Lookup(%q) = %q, want %q", tt.table.Name, tt.token, got, tt.want)
		}
	}
}

func TestTableSizes(t *testing.T) {
	sizes := map[*Table]int{
		ElementClasses:         14,
		ManaLevels:             6,
		FairyGlows:             39,
		ActiveSpellCritEffects: 43,
		PassiveSpellEffects:    55,
		Animations:             41,
	}
	for table, want := range sizes {
		if table.Len() != want {
			t.Errorf("%s has %d entries, want %d", table.Name, table.Len(), want)
		}
	}
}

func TestManaLevels(t *testing.T) {
	tests := map[string]string{
		"0":  "5",
		"4":  "55",
		"5":  None,
		"6":  Unresolved,
		"-1": Unresolved,
		"a":  Unresolved,
	}
	for token, want := range tests {
		if got := ManaLevels.Lookup(token); got != want {
			t.Errorf("ManaLevels.Lookup(%q) = %q, want %q", token, got, want)
		}
	}
}

func TestFairyGlows(t *testing.T) {
	if got := FairyGlows.Lookup("28"); got != "Orange prison sphere (intensity 3)" {
		t.Errorf("FairyGlows.Lookup(28) = %q", got)
	}
	if got := FairyGlows.Lookup("39"); got != Unresolved {
		t.Errorf("FairyGlows.Lookup(39) = %q, want unresolved", got)
	}
	if got := FairyGlows.Lookup("0"); got != "-/- (intensity 0)" {
		t.Errorf("FairyGlows.Lookup(0) = %q", got)
	}
}

func TestParseCardKind(t *testing.T) {
	for token, want := range map[string]CardKind{"0": CardItem, "1": CardSpell, "2": CardFairy, "3": CardBlank} {
		got, ok := ParseCardKind(token)
		if !ok || got != want {
			t.Errorf("ParseCardKind(%q) = %v, %v; want %v", token, got, ok, want)
		}
	}
	for _, token := range []string{"4", "-1", "01", "", "fairy"} {
		if _, ok := ParseCardKind(token); ok {
			t.Errorf("ParseCardKind(%q) succeeded", token)
		}
	}
}

func TestEntityID(t *testing.T) {
	if got := EntityID(0x002A0102); got != 42 {
		t.Errorf("EntityID = %d, want 42", got)
	}
	if got := EntityID(0x7FFF0000 | 0x00010000); got != 0x7FFF {
		t.Errorf("EntityID = %#x, want 0x7fff", got)
	}
}

func TestTableByName(t *testing.T) {
	for _, table := range Tables() {
		got, ok := TableByName(table.Name)
		if !ok || got != table {
			t.Errorf("TableByName(%q) did not return the table", table.Name)
		}
	}
	if _, ok := TableByName("nope"); ok {
		t.Error("TableByName(nope) succeeded")
	}
}

func TestScriptArgumentDescriptions(t *testing.T) {
	if s, ok := ModifyWizformSubcommand("17"); !ok || s != "Fill up mana" {
		t.Errorf("ModifyWizformSubcommand(17) = %q, %v", s, ok)
	}
	if _, ok := ModifyWizformSubcommand(ModifyWizformEvolve); ok {
		t.Error("the evolve subcommand has no fixed description")
	}
	if s, ok := LookAtMode("-1"); !ok || s != "Idle: Don't look at player" {
		t.Errorf("LookAtMode(-1) = %q, %v", s, ok)
	}
	if _, ok := LookAtMode("0"); ok {
		t.Error("LookAtMode(0) succeeded")
	}
	if s, ok := ActorEffect("1"); !ok || s != "Orange sphere" {
		t.Errorf("ActorEffect(1) = %q, %v", s, ok)
	}
}
