package annotate

import (
	"context"
	"errors"

	"github.com/chazu/zzed/gamedata"
)

// ErrUnknown is returned by StaticResolver for identifiers it has no entry for.
var ErrUnknown = errors.New("annotate: unknown identifier")

// StaticResolver resolves identifiers from in-memory maps. It is used when
// no database is at hand, e.g. for fixtures and offline decompiling of
// exported bundles.
type StaticResolver struct {
	Labels  map[string]string
	Dialogs map[string]string
	Fairies map[string]string // entity id -> name
	Items   map[string]string // entity id -> name
	Spells  map[string]string // entity id -> name
}

func lookup(m map[string]string, key string) (string, error) {
	if v, ok := m[key]; ok {
		return v, nil
	}
	return "", ErrUnknown
}

// ResolveLabel implements Resolver.
func (r *StaticResolver) ResolveLabel(_ context.Context, uid string) (string, error) {
	return lookup(r.Labels, uid)
}

// ResolveDialog implements Resolver.
func (r *StaticResolver) ResolveDialog(_ context.Context, uid string) (string, error) {
	return lookup(r.Dialogs, uid)
}

// ResolveFairyName implements Resolver.
func (r *StaticResolver) ResolveFairyName(_ context.Context, entityID string) (string, error) {
	return lookup(r.Fairies, entityID)
}

// ResolveCardDescription implements Resolver. A missing name still yields
// a description with the kind prefix, as card references stay meaningful
// without it.
func (r *StaticResolver) ResolveCardDescription(_ context.Context, kind gamedata.CardKind, entityID string) (string, error) {
	var names map[string]string
	switch kind {
	case gamedata.CardItem:
		names = r.Items
	case gamedata.CardSpell:
		names = r.Spells
	case gamedata.CardFairy:
		names = r.Fairies
	case gamedata.CardBlank:
		return kind.String(), nil
	default:
		return "", ErrUnknown
	}
	name, err := lookup(names, entityID)
	if err != nil {
		name = gamedata.Unresolved
	}
	return kind.String() + ": " + name, nil
}
