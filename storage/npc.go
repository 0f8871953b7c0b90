package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Slot is one of the five scripts attached to an NPC.
type Slot int

const (
	SlotInit Slot = iota
	SlotUpdate
	SlotTrigger
	SlotVictorious
	SlotDefeated

	SlotCount = int(SlotDefeated) + 1
)

var slotNames = [SlotCount]string{"Init", "Update", "Trigger", "Victorious", "Defeated"}

// slotColumns maps slots to their _fb0x05 columns. The column order in the
// table does not follow the slot order.
var slotColumns = [SlotCount]string{"col_2_String", "col_3_String", "col_1_String", "col_5_String", "col_4_String"}

func (s Slot) String() string {
	if s < 0 || int(s) >= SlotCount {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotNames[s]
}

// Slots returns every slot in editing order.
func Slots() []Slot {
	return []Slot{SlotInit, SlotUpdate, SlotTrigger, SlotVictorious, SlotDefeated}
}

// ParseSlot finds a slot by name, ignoring case.
func ParseSlot(name string) (Slot, bool) {
	for i, n := range slotNames {
		if strings.EqualFold(n, name) {
			return Slot(i), true
		}
	}
	return 0, false
}

// NPC is a row of the NPC table with its packed scripts.
type NPC struct {
	UID        string
	NameUID    string // label holding the NPC's name
	NameSuffix string // second half of the name foreign key, kept on save
	Scripts    [SlotCount]string
}

// NPCSummary identifies an NPC in listings.
type NPCSummary struct {
	UID  string
	Name string
}

const npcColumns = `col_0_ForeignKey, col_2_String, col_3_String, col_1_String, col_5_String, col_4_String`

// LoadNPC reads an NPC and its five scripts.
func (s *Store) LoadNPC(ctx context.Context, uid string) (NPC, error) {
	if err := s.ready(ctx); err != nil {
		return NPC{}, err
	}

	var foreignKey sql.NullString
	var scripts [SlotCount]sql.NullString
	// Scan order follows npcColumns, which lists slots in Slot order.
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+npcColumns+` FROM _fb0x05 WHERE UID = ?`, uid,
	).Scan(&foreignKey, &scripts[SlotInit], &scripts[SlotUpdate], &scripts[SlotTrigger],
		&scripts[SlotVictorious], &scripts[SlotDefeated])
	if errors.Is(err, sql.ErrNoRows) {
		return NPC{}, fmt.Errorf("load npc %s: %w", uid, ErrNotFound)
	}
	if err != nil {
		return NPC{}, fmt.Errorf("load npc %s: %w", uid, err)
	}

	npc := NPC{UID: uid}
	npc.NameUID, npc.NameSuffix = splitForeignKey(foreignKey.String)
	for i, script := range scripts {
		npc.Scripts[i] = script.String
	}
	return npc, nil
}

// SaveNPC writes the name reference and all five scripts of an NPC.
func (s *Store) SaveNPC(ctx context.Context, npc NPC) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	query := `UPDATE _fb0x05 SET col_0_ForeignKey = ?`
	args := []any{joinForeignKey(npc.NameUID, npc.NameSuffix)}
	for _, slot := range Slots() {
		query += ", " + slotColumns[slot] + " = ?"
		args = append(args, npc.Scripts[slot])
	}
	query += ` WHERE UID = ?`
	args = append(args, npc.UID)

	res, err := s.sqlDB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save npc %s: %w", npc.UID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("save npc %s: %w", npc.UID, ErrNotFound)
	}
	return nil
}

// NPCName resolves the display name of an NPC.
func (s *Store) NPCName(ctx context.Context, npc NPC) (string, error) {
	return s.ResolveLabel(ctx, npc.NameUID)
}

// ListNPCs returns every NPC in table order with its resolved name. Names
// that cannot be resolved are left empty.
func (s *Store) ListNPCs(ctx context.Context) ([]NPCSummary, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT n.UID, l.col_0_String
		   FROM _fb0x05 n
		   LEFT JOIN _fb0x02 l
		     ON l.UID = substr(n.col_0_ForeignKey, 1, instr(n.col_0_ForeignKey || '|', '|') - 1)
		  ORDER BY n.rowid`)
	if err != nil {
		return nil, fmt.Errorf("list npcs: %w", err)
	}
	defer rows.Close()

	var out []NPCSummary
	for rows.Next() {
		var uid string
		var name sql.NullString
		if err := rows.Scan(&uid, &name); err != nil {
			return nil, fmt.Errorf("list npcs: %w", err)
		}
		out = append(out, NPCSummary{UID: uid, Name: name.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list npcs: %w", err)
	}
	return out, nil
}
