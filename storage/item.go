package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/chazu/zzed/gamedata"
)

// Item is an item row with the script run when the item is used.
type Item struct {
	UID      string
	EntityID string
	Script   string
}

// ItemSummary identifies an item in listings.
type ItemSummary struct {
	UID      string
	EntityID string
	Name     string
}

// FindItem looks up an item by the entity id scripts use to refer to it.
// When several rows carry the same entity id the first one wins.
func (s *Store) FindItem(ctx context.Context, entityID string) (Item, error) {
	if err := s.ready(ctx); err != nil {
		return Item{}, err
	}

	var uid string
	var script sql.NullString
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT UID, col_4_String FROM _fb0x04 WHERE `+entityIDMatch("col_1_Integer")+
			` ORDER BY rowid LIMIT 1`, entityID,
	).Scan(&uid, &script)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, fmt.Errorf("find item %s: %w", entityID, ErrNotFound)
	}
	if err != nil {
		return Item{}, fmt.Errorf("find item %s: %w", entityID, err)
	}
	return Item{UID: uid, EntityID: entityID, Script: script.String}, nil
}

// SaveItemScript replaces the script of the item row uid.
func (s *Store) SaveItemScript(ctx context.Context, uid, script string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `UPDATE _fb0x04 SET col_4_String = ? WHERE UID = ?`, script, uid)
	if err != nil {
		return fmt.Errorf("save item %s: %w", uid, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("save item %s: %w", uid, ErrNotFound)
	}
	return nil
}

// ListItems returns every item in table order with its entity id and
// resolved name. Names that cannot be resolved are left empty.
func (s *Store) ListItems(ctx context.Context) ([]ItemSummary, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT i.UID, i.col_1_Integer, l.col_0_String
		   FROM _fb0x04 i
		   LEFT JOIN _fb0x02 l
		     ON l.UID = substr(i.col_0_ForeignKey, 1, instr(i.col_0_ForeignKey || '|', '|') - 1)
		  ORDER BY i.rowid`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var out []ItemSummary
	for rows.Next() {
		var uid string
		var cardID int64
		var name sql.NullString
		if err := rows.Scan(&uid, &cardID, &name); err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		out = append(out, ItemSummary{
			UID:      uid,
			EntityID: strconv.FormatInt(gamedata.EntityID(cardID), 10),
			Name:     name.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return out, nil
}
