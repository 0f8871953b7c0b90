package gamedata

// Descriptions of fixed script argument values. These are keyed by the
// literal argument token, as the game compares them as strings.

// ModifyWizformEvolve is the modifyWizform subcommand whose argument is the
// fairy to evolve into.
const ModifyWizformEvolve = "7"

var modifyWizformSubcommands = map[string]string{
	"0":  "Heal",
	"1":  "Add exp",
	"2":  "Clear status effects",
	"8":  "Add exp to almost next level",
	"16": "Revive fairy",
	"17": "Fill up mana",
	"18": "Rename fairy",
}

// ModifyWizformSubcommand describes a modifyWizform subcommand other than
// ModifyWizformEvolve.
func ModifyWizformSubcommand(token string) (string, bool) {
	s, ok := modifyWizformSubcommands[token]
	return s, ok
}

var lookAtModes = map[string]string{
	"-1": "Idle: Don't look at player",
	"1":  "Rotate to player",
	"2":  "Rotate to player smoothly",
	"3":  "Rotate to player like a billboard",
}

// LookAtMode describes the mode argument of lookAtPlayer.
func LookAtMode(token string) (string, bool) {
	s, ok := lookAtModes[token]
	return s, ok
}

var actorEffects = map[string]string{
	"0": "Rain clouds with lightning",
	"1": "Orange sphere",
}

// ActorEffect describes the effect started by startActorEffect.
func ActorEffect(token string) (string, bool) {
	s, ok := actorEffects[token]
	return s, ok
}

// Conditions of ifPlayerHasSpecials.
const (
	SpecialFairyInDeck    = "1"
	SpecialFairyCount     = "2"
	SpecialElementalFairy = "3"
)
