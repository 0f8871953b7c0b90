package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/chazu/zzed/gamedata"
)

// ResolveLabel returns the text of a label.
func (s *Store) ResolveLabel(ctx context.Context, uid string) (string, error) {
	text, err := s.queryString(ctx, `SELECT col_0_String FROM _fb0x02 WHERE UID = ?`, uid)
	if err != nil {
		return "", fmt.Errorf("resolve label %s: %w", uid, err)
	}
	return text, nil
}

// ResolveDialog returns the text of a dialog line.
func (s *Store) ResolveDialog(ctx context.Context, uid string) (string, error) {
	text, err := s.queryString(ctx, `SELECT col_0_String FROM _fb0x06 WHERE UID = ?`, uid)
	if err != nil {
		return "", fmt.Errorf("resolve dialog %s: %w", uid, err)
	}
	return text, nil
}

// cardTable names the table and columns holding the cards of one kind.
type cardTable struct {
	table  string
	name   string
	cardID string
}

var cardTables = map[gamedata.CardKind]cardTable{
	gamedata.CardItem:  {"_fb0x04", "col_0_ForeignKey", "col_1_Integer"},
	gamedata.CardSpell: {"_fb0x03", "col_0_ForeignKey", "col_2_Integer"},
	gamedata.CardFairy: {"_fb0x01", "col_1_ForeignKey", "col_3_Integer"},
}

// cardName resolves the display name of the first card of the given kind
// whose card id carries entityID.
func (s *Store) cardName(ctx context.Context, kind gamedata.CardKind, entityID string) (string, error) {
	t, ok := cardTables[kind]
	if !ok {
		return "", fmt.Errorf("no card table for %s", kind)
	}
	query := "SELECT " + t.name + " FROM " + t.table +
		" WHERE " + entityIDMatch(t.cardID) + " ORDER BY rowid LIMIT 1"
	foreignKey, err := s.queryString(ctx, query, entityID)
	if err != nil {
		return "", fmt.Errorf("resolve %s %s: %w", kind, entityID, err)
	}
	return s.ResolveLabel(ctx, labelUID(foreignKey))
}

// ResolveFairyName returns the name of the fairy with the given entity id.
func (s *Store) ResolveFairyName(ctx context.Context, entityID string) (string, error) {
	return s.cardName(ctx, gamedata.CardFairy, entityID)
}

// ResolveCardDescription describes a card as "Kind: name". A card whose
// name cannot be found is still described, with gamedata.Unresolved as the
// name; other database failures are returned.
func (s *Store) ResolveCardDescription(ctx context.Context, kind gamedata.CardKind, entityID string) (string, error) {
	switch kind {
	case gamedata.CardBlank:
		return kind.String(), nil
	case gamedata.CardItem, gamedata.CardSpell, gamedata.CardFairy:
	default:
		return "", fmt.Errorf("unknown card kind %d", int(kind))
	}

	name, err := s.cardName(ctx, kind, entityID)
	if errors.Is(err, ErrNotFound) {
		name = gamedata.Unresolved
	} else if err != nil {
		return "", err
	}
	return kind.String() + ": " + name, nil
}
