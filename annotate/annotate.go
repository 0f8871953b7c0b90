// Package annotate explains decompiled script commands.
//
// For every command that takes arguments the Engine lists the parameter
// names and, where an argument refers to something the player would
// recognise, appends what it refers to: the text of a dialog, the name of a
// fairy, the card being handed out, the animation being played. Lookups go
// through an injected Resolver; anything that cannot be resolved is shown
// as gamedata.Unresolved.
package annotate

import (
	"context"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/zzed/gamedata"
	"github.com/chazu/zzed/opcode"
)

// Resolver maps identifiers found in script arguments to display text.
// Implementations return an error for identifiers they do not know.
type Resolver interface {
	ResolveLabel(ctx context.Context, uid string) (string, error)
	ResolveDialog(ctx context.Context, uid string) (string, error)
	ResolveFairyName(ctx context.Context, entityID string) (string, error)
	ResolveCardDescription(ctx context.Context, kind gamedata.CardKind, entityID string) (string, error)
}

const logName = "zzed.annotate"

// Engine builds annotation comments. A nil resolver is allowed; every
// identifier lookup then yields gamedata.Unresolved.
type Engine struct {
	resolver Resolver
}

// New creates an Engine backed by r.
func New(r Resolver) *Engine {
	return &Engine{resolver: r}
}

// Annotate returns the comment appended to a decompiled command line, in
// the form " // p1, p2; description". Commands without parameters get an
// empty comment.
func (e *Engine) Annotate(ctx context.Context, cmd opcode.Command, args []string) string {
	if !cmd.HasParams() {
		return ""
	}

	var b strings.Builder
	b.WriteString(" // ")
	b.WriteString(strings.Join(cmd.Params(), ", "))
	if desc, ok := e.Describe(ctx, cmd, args); ok {
		b.WriteString("; ")
		b.WriteString(desc)
	}
	return b.String()
}

// Describe resolves what the arguments of cmd refer to. It reports false
// for commands whose arguments carry no resolvable meaning.
func (e *Engine) Describe(ctx context.Context, cmd opcode.Command, args []string) (string, bool) {
	a := argList(args)

	switch cmd {
	case opcode.Wizform:
		return e.fairyName(ctx, a, 1), true

	case opcode.DefaultWizForm, opcode.IfIsWizform:
		return e.fairyName(ctx, a, 0), true

	case opcode.Say, opcode.Talk:
		return e.dialog(ctx, a, 0), true

	case opcode.Choice:
		return e.dialog(ctx, a, 1), true

	case opcode.GivePlayerCards, opcode.SetupGambling,
		opcode.IfPlayerHasCards, opcode.RemovePlayerCards:
		return e.card(ctx, a, 1, 2), true

	case opcode.ModifyWizform:
		return e.modifyWizform(ctx, a)

	case opcode.IfPlayerHasSpecials:
		return specials(a)

	case opcode.LookAtPlayer:
		return gamedata.LookAtMode(a.get(1))

	case opcode.PlayAnimation, opcode.PlayPlayerAnimation:
		return "Animation: " + gamedata.Animations.Lookup(a.get(0)), true

	case opcode.StartActorEffect:
		return gamedata.ActorEffect(a.get(0))

	default:
		return "", false
	}
}

func (e *Engine) fairyName(ctx context.Context, a argList, i int) string {
	id, ok := a.at(i)
	if !ok || e.resolver == nil {
		return gamedata.Unresolved
	}
	name, err := e.resolver.ResolveFairyName(ctx, id)
	return e.resolved(name, err, "fairy", id)
}

func (e *Engine) dialog(ctx context.Context, a argList, i int) string {
	uid, ok := a.at(i)
	if !ok || e.resolver == nil {
		return gamedata.Unresolved
	}
	text, err := e.resolver.ResolveDialog(ctx, uid)
	return e.resolved(text, err, "dialog", uid)
}

func (e *Engine) card(ctx context.Context, a argList, kindIdx, idIdx int) string {
	kindToken, ok1 := a.at(kindIdx)
	id, ok2 := a.at(idIdx)
	if !ok1 || !ok2 {
		return gamedata.Unresolved
	}
	kind, ok := gamedata.ParseCardKind(kindToken)
	if !ok {
		return gamedata.Unresolved
	}
	if kind == gamedata.CardBlank {
		return kind.String()
	}
	if e.resolver == nil {
		return gamedata.Unresolved
	}
	desc, err := e.resolver.ResolveCardDescription(ctx, kind, id)
	return e.resolved(desc, err, "card", kindToken+"/"+id)
}

func (e *Engine) modifyWizform(ctx context.Context, a argList) (string, bool) {
	sub := a.get(0)
	if sub == gamedata.ModifyWizformEvolve {
		return "Evolve to " + e.fairyName(ctx, a, 1), true
	}
	return gamedata.ModifyWizformSubcommand(sub)
}

func specials(a argList) (string, bool) {
	switch a.get(0) {
	case gamedata.SpecialFairyInDeck:
		if a.get(1) == "0" {
			return "Player has no Fairy in Deck", true
		}
		return "Player has Fairy in Deck", true
	case gamedata.SpecialFairyCount:
		return "Player has at least n fairies", true
	case gamedata.SpecialElementalFairy:
		return "Player can show " + gamedata.ElementClasses.Lookup(a.get(1)) + " Fairy", true
	}
	return "", false
}

func (e *Engine) resolved(text string, err error, kind, id string) string {
	if err != nil {
		commonlog.GetLogger(logName).Debugf("unresolved %s %q: %s", kind, id, err)
		return gamedata.Unresolved
	}
	return text
}

// argList guards against packed lines carrying fewer arguments than their
// command declares.
type argList []string

func (a argList) at(i int) (string, bool) {
	if i < 0 || i >= len(a) {
		return "", false
	}
	return a[i], true
}

func (a argList) get(i int) string {
	s, _ := a.at(i)
	return s
}
