// Package opcode defines the ZanZarah NPC and item script command set.
//
// Packed scripts, as stored in the game database, encode every command as a
// single printable character followed by optional '.'-separated arguments.
// The editable form spells each command out as a mnemonic. This package is
// the shared table both the compiler and the decompiler are built on.
package opcode

import "fmt"

// Command identifies a script command.
type Command int

const (
	// ========================================================================
	// Dialog
	// ========================================================================

	Say Command = iota
	Choice
	WaitForUser
	Talk
	Ask
	SetTalkLabels
	PlayAmyVoice

	// ========================================================================
	// Flow control
	// ========================================================================

	Label
	Goto
	GotoRandomLabel
	GotoLabelByRandom
	Exit
	Else
	EndIf
	BeginIfGlobal
	Delay
	Idle
	LockUserInput

	// ========================================================================
	// Conditions (every mnemonic with the "if" prefix opens a block)
	// ========================================================================

	IfPlayerHasCards
	IfPlayerHasSpecials
	IfTriggerIsActive
	IfIsWizform
	IfCloseToWaypoint
	IfNpcModifierHasValue
	IfPlayerIsClose
	IfNumberOfNpcsIs
	IfTriggerIsEnabled

	// ========================================================================
	// Fairies, spells and cards
	// ========================================================================

	Wizform
	Spell
	CatchWizform
	ModifyWizform
	EvolveWizForm
	NpcWizFormEscapes
	RemoveWizForms
	DefaultWizForm
	DefaultDeck
	GivePlayerCards
	RemovePlayerCards
	SetupGambling
	GivePlayerPresent
	Revive

	// ========================================================================
	// Trading
	// ========================================================================

	TradingCurrency
	TradingItem
	TradingSpell
	TradingWizform
	ChafferWizForms
	TradeWizform

	// ========================================================================
	// NPC and world state
	// ========================================================================

	SetModel
	SetCamera
	ChangeWaypoint
	Fight
	LookAtPlayer
	LookAtTrigger
	ChangeDatabase
	RemoveNpc
	KillPlayer
	MoveSystem
	MovementSpeed
	ModifyTrigger
	StartPrelude
	Dance
	SetGlobal
	SetNpcType
	DeployNpcAtTrigger
	RemoveNpcAtTrigger
	SetNpcModifier
	SetCollision
	CreateDynamicItems
	CreateDynamicModel
	CreateSceneObjects
	RemoveBehaviour
	UnlockDoor
	EndGame
	SubGame
	PlayInArena

	// ========================================================================
	// Animation, effects and media
	// ========================================================================

	PlayAnimation
	PlayPlayerAnimation
	StartEffect
	ModifyEffect
	StartActorEffect
	EndActorEffect
	PlayVideo
	PlaySound
	DeploySound

	commandCount
)

// CommandInfo describes one command: its packed opcode, its mnemonic and the
// names of its parameters. A nil Params means the command takes no arguments.
type CommandInfo struct {
	Opcode   byte
	Mnemonic string
	Params   []string
}

// commandTable is the static command set. Opcode characters and parameter
// names follow the zzio script reference.
var commandTable = map[Command]CommandInfo{
	// Dialog
	Say:           {'!', "say", []string{"dialogUid", "silent"}},
	Choice:        {'"', "choice", []string{"ladelId", "uid"}},
	WaitForUser:   {'#', "waitForUser", nil},
	Talk:          {'J', "talk", []string{"uid"}},
	Ask:           {'M', "ask", nil},
	SetTalkLabels: {'\\', "setTalkLabels", []string{"yes", "no", "talkMode"}},
	PlayAmyVoice:  {'s', "playAmyVoice", []string{"string"}},

	// Flow control
	Label:             {'$', "label", []string{"id"}},
	Goto:              {'K', "goto", []string{"labelId"}},
	GotoRandomLabel:   {'L', "gotoRandomLabel", []string{"int", "int"}},
	GotoLabelByRandom: {'R', "gotoLabelByRandom", nil},
	Exit:              {'%', "exit", nil},
	Else:              {'8', "else", nil},
	EndIf:             {'7', "endIf", nil},
	BeginIfGlobal:     {'I', "beginIf_global", nil},
	Delay:             {'Q', "delay", []string{"duration"}},
	Idle:              {'X', "idle", nil},
	LockUserInput:     {'<', "lockUserInput", []string{"bool"}},

	// Conditions
	IfPlayerHasCards:      {'6', "ifPlayerHasCards", []string{"amount", "cardType", "id"}},
	IfPlayerHasSpecials:   {'@', "ifPlayerHasSpecials", []string{"condition", "argument"}},
	IfTriggerIsActive:     {'=', "ifTriggerIsActive", []string{"id"}},
	IfIsWizform:           {'D', "ifIsWizform", []string{"fairyId"}},
	IfCloseToWaypoint:     {'S', "ifCloseToWaypoint", []string{"waypointId"}},
	IfNpcModifierHasValue: {'U', "ifNpcModifierHasValue", []string{"id"}},
	IfPlayerIsClose:       {'Y', "ifPlayerIsClose", []string{"distance"}},
	IfNumberOfNpcsIs:      {'Z', "ifNumberOfNpcsIs", []string{"amount", "uid"}},
	IfTriggerIsEnabled:    {'d', "ifTriggerIsEnabled", []string{"triggerId"}},

	// Fairies, spells and cards
	Wizform:           {'\'', "wizform", []string{"deckSlot", "fairyId", "level"}},
	Spell:             {'(', "spell", []string{"deckSlot", "spellSlot", "spellId"}},
	CatchWizform:      {'.', "catchWizform", nil},
	ModifyWizform:     {';', "modifyWizform", []string{"subcommand", "argument"}},
	EvolveWizForm:     {'j', "evolveWizForm", nil},
	NpcWizFormEscapes: {'F', "npcWizFormEscapes", nil},
	RemoveWizForms:    {'T', "removeWizForms", nil},
	DefaultWizForm:    {'W', "defaultWizForm", []string{"fairyId", "groupOrSlot", "level"}},
	DefaultDeck:       {'n', "defaultDeck", []string{"groupId", "level", "UNUSED"}},
	GivePlayerCards:   {'1', "givePlayerCards", []string{"amount", "cardType", "id"}},
	RemovePlayerCards: {'9', "removePlayerCards", []string{"amount", "cardType", "id"}},
	SetupGambling:     {'B', "setupGambling", []string{"amount", "cardType", "id"}},
	GivePlayerPresent: {'u', "givePlayerPresent", []string{"UNUSED"}},
	Revive:            {'b', "revive", nil},

	// Trading
	TradingCurrency: {'5', "tradingCurrency", []string{"uid"}},
	TradingItem:     {'2', "tradingItem", []string{"price", "uid"}},
	TradingSpell:    {'3', "tradingSpell", []string{"price", "uid"}},
	TradingWizform:  {'4', "tradingWizform", []string{"price", "uid"}},
	ChafferWizForms: {'N', "chafferWizForms", []string{"uid1", "uid2", "uid3"}},
	TradeWizform:    {'^', "tradeWizform", []string{"id"}},

	// NPC and world state
	SetModel:           {'C', "setModel", []string{"id"}},
	SetCamera:          {'&', "setCamera", []string{"code"}},
	ChangeWaypoint:     {')', "changeWaypoint", []string{"startId", "endId"}},
	Fight:              {'*', "fight", []string{"sceneId", "multipleEnemiesBool"}},
	LookAtPlayer:       {'+', "lookAtPlayer", []string{"seconds/10", "mode"}},
	LookAtTrigger:      {'c', "lookAtTrigger", []string{"duration", "triggerId"}},
	ChangeDatabase:     {',', "changeDatabase", []string{"uid"}},
	RemoveNpc:          {'-', "removeNpc", nil},
	KillPlayer:         {'0', "killPlayer", nil},
	MoveSystem:         {':', "moveSystem", []string{"waypointMode", "waypointCategory"}},
	MovementSpeed:      {'?', "movementSpeed", []string{"int"}},
	ModifyTrigger:      {'>', "modifyTrigger", []string{"enable", "id", "triggerId"}},
	StartPrelude:       {'E', "startPrelude", nil},
	Dance:              {'G', "dance", nil},
	SetGlobal:          {'H', "setGlobal", nil},
	SetNpcType:         {'O', "setNpcType", []string{"int"}},
	DeployNpcAtTrigger: {'P', "deployNpcAtTrigger", []string{"id", "NpcOrPlayerBool"}},
	RemoveNpcAtTrigger: {'a', "removeNpcAtTrigger", []string{"triggerId"}},
	SetNpcModifier:     {'V', "setNpcModifier", []string{"scene", "triggerId", "value"}},
	SetCollision:       {']', "setCollision", []string{"isSolidBool"}},
	CreateDynamicItems: {'_', "createDynamicItems", []string{"itemId", "count", "triggerId"}},
	CreateDynamicModel: {'r', "createDynamicModel", []string{"UNUSED", "UNUSED", "UNUSED"}},
	CreateSceneObjects: {'i', "createSceneObjects", []string{"objectType"}},
	RemoveBehaviour:    {'k', "removeBehaviour", []string{"id"}},
	UnlockDoor:         {'l', "unlockDoor", []string{"id", "isMetalDoorBool"}},
	EndGame:            {'m', "endGame", nil},
	SubGame:            {'o', "subGame", []string{"gameType", "size", "exitLabel"}},
	PlayInArena:        {'f', "playInArena", []string{"arg", "UNUSED"}},

	// Animation, effects and media
	PlayAnimation:       {'A', "playAnimation", []string{"animationType", "UNUSED"}},
	PlayPlayerAnimation: {'q', "playPlayerAnimation", []string{"animationType", "UNUSED"}},
	StartEffect:         {'[', "startEffect", []string{"effectType", "triggerId"}},
	ModifyEffect:        {'p', "modifyEffect", nil},
	StartActorEffect:    {'g', "startActorEffect", []string{"id"}},
	EndActorEffect:      {'h', "endActorEffect", nil},
	PlayVideo:           {'`', "playVideo", []string{"videoId"}},
	PlaySound:           {'e', "playSound", []string{"soundId"}},
	DeploySound:         {'t', "deploySound", []string{"id", "triggerId"}},
}

// Reverse indexes, filled by init once the table has been validated.
var (
	byOpcode   [256]Command
	byMnemonic map[string]Command
)

func init() {
	if err := Validate(commandTable); err != nil {
		panic(fmt.Sprintf("opcode: invalid command table: %v", err))
	}

	for i := range byOpcode {
		byOpcode[i] = -1
	}
	byMnemonic = make(map[string]Command, len(commandTable))
	for cmd, info := range commandTable {
		byOpcode[info.Opcode] = cmd
		byMnemonic[info.Mnemonic] = cmd
	}
}

// Validate checks that table defines every command exactly once and that
// opcodes and mnemonics form a bijection.
func Validate(table map[Command]CommandInfo) error {
	if len(table) != int(commandCount) {
		return fmt.Errorf("table defines %d commands, want %d", len(table), commandCount)
	}

	opcodes := make(map[byte]Command, len(table))
	mnemonics := make(map[string]Command, len(table))
	for cmd := Command(0); cmd < commandCount; cmd++ {
		info, ok := table[cmd]
		if !ok {
			return fmt.Errorf("command %d has no entry", int(cmd))
		}
		if info.Opcode < 0x21 || info.Opcode > 0x7E {
			return fmt.Errorf("command %q: opcode 0x%02X is not a printable character", info.Mnemonic, info.Opcode)
		}
		if info.Mnemonic == "" {
			return fmt.Errorf("command %d has an empty mnemonic", int(cmd))
		}
		if other, dup := opcodes[info.Opcode]; dup {
			return fmt.Errorf("opcode %q shared by %q and %q",
				info.Opcode, table[other].Mnemonic, info.Mnemonic)
		}
		if other, dup := mnemonics[info.Mnemonic]; dup {
			return fmt.Errorf("mnemonic %q used by commands %d and %d", info.Mnemonic, int(other), int(cmd))
		}
		opcodes[info.Opcode] = cmd
		mnemonics[info.Mnemonic] = cmd
	}
	return nil
}

// Lookup returns the command spelled by mnemonic.
func Lookup(mnemonic string) (Command, bool) {
	cmd, ok := byMnemonic[mnemonic]
	return cmd, ok
}

// Decode returns the command encoded by the opcode character op.
func Decode(op byte) (Command, bool) {
	cmd := byOpcode[op]
	return cmd, cmd >= 0
}

// DecodeToken is Decode for the leading token of a packed line. Only
// single-character tokens can be opcodes.
func DecodeToken(token string) (Command, bool) {
	if len(token) != 1 {
		return -1, false
	}
	return Decode(token[0])
}

// Info returns the table entry for cmd.
func (cmd Command) Info() (CommandInfo, bool) {
	info, ok := commandTable[cmd]
	return info, ok
}

// Valid reports whether cmd is part of the command set.
func (cmd Command) Valid() bool {
	return cmd >= 0 && cmd < commandCount
}

// Opcode returns the packed character of cmd, or 0 for an invalid command.
func (cmd Command) Opcode() byte {
	return commandTable[cmd].Opcode
}

// Mnemonic returns the source spelling of cmd.
func (cmd Command) Mnemonic() string {
	return commandTable[cmd].Mnemonic
}

// Params returns the parameter names of cmd. The slice is shared and must
// not be modified.
func (cmd Command) Params() []string {
	return commandTable[cmd].Params
}

// Arity is the exact number of arguments cmd takes.
func (cmd Command) Arity() int {
	return len(commandTable[cmd].Params)
}

// HasParams reports whether cmd is listed with parameters. Commands without
// parameters carry no annotation when decompiled.
func (cmd Command) HasParams() bool {
	return commandTable[cmd].Params != nil
}

// OpensBlock reports whether cmd is a condition, i.e. its mnemonic starts
// with "if". Decompiled lines after it are indented one level.
func (cmd Command) OpensBlock() bool {
	m := cmd.Mnemonic()
	return len(m) >= 2 && m[:2] == "if"
}

// ClosesBlock reports whether cmd ends a condition block.
func (cmd Command) ClosesBlock() bool {
	return cmd == EndIf
}

// String returns the mnemonic, or Command(n) for values outside the set.
func (cmd Command) String() string {
	if !cmd.Valid() {
		return fmt.Sprintf("Command(%d)", int(cmd))
	}
	return cmd.Mnemonic()
}

// All returns every command in declaration order.
func All() []Command {
	cmds := make([]Command, 0, commandCount)
	for cmd := Command(0); cmd < commandCount; cmd++ {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// Count returns the number of commands in the set.
func Count() int {
	return int(commandCount)
}
