// Package editor loads scripts from the game database as editable source
// and writes edited source back.
//
// Saving is all or nothing: every script being saved is compiled first and
// nothing is written when any of them fails. After a successful save the
// stored text is decompiled again, so callers can show the canonical form
// of what was written.
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/zzed/compiler"
	"github.com/chazu/zzed/storage"
)

const logName = "zzed.editor"

// Store is the part of the game database the editor needs.
type Store interface {
	LoadNPC(ctx context.Context, uid string) (storage.NPC, error)
	SaveNPC(ctx context.Context, npc storage.NPC) error
	FindItem(ctx context.Context, entityID string) (storage.Item, error)
	SaveItemScript(ctx context.Context, uid, script string) error
}

// Session edits scripts of one database.
type Session struct {
	store     Store
	annotator compiler.Annotator
}

// NewSession creates a Session. The annotator may be nil.
func NewSession(store Store, annotator compiler.Annotator) *Session {
	return &Session{store: store, annotator: annotator}
}

// NPCSource is an NPC with its scripts in source form.
type NPCSource struct {
	UID     string
	NameUID string
	Scripts [storage.SlotCount]string
}

// ItemSource is an item script in source form.
type ItemSource struct {
	UID      string
	EntityID string
	Script   string
}

// ScriptError is a compile failure of one script.
type ScriptError struct {
	Script string // slot name, or "Item"
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s script:\n%s", e.Script, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// ScriptErrors holds every script that failed to compile during a save.
type ScriptErrors []*ScriptError

func (l ScriptErrors) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// LoadNPC returns the decompiled scripts of an NPC.
func (s *Session) LoadNPC(ctx context.Context, uid string) (NPCSource, error) {
	npc, err := s.store.LoadNPC(ctx, uid)
	if err != nil {
		return NPCSource{}, err
	}
	return s.npcSource(ctx, npc), nil
}

// SaveNPC compiles all five scripts of src and writes them. An empty
// NameUID keeps the NPC's current name. The returned source is the
// decompiled form of what was stored.
func (s *Session) SaveNPC(ctx context.Context, src NPCSource) (NPCSource, error) {
	npc, err := s.store.LoadNPC(ctx, src.UID)
	if err != nil {
		return NPCSource{}, err
	}

	var errs ScriptErrors
	for _, slot := range storage.Slots() {
		packed, err := compiler.Compile(src.Scripts[slot])
		if err != nil {
			errs = append(errs, &ScriptError{Script: slot.String(), Err: err})
			continue
		}
		npc.Scripts[slot] = packed
	}
	if len(errs) > 0 {
		return NPCSource{}, errs
	}

	if src.NameUID != "" {
		npc.NameUID = src.NameUID
	}
	if err := s.store.SaveNPC(ctx, npc); err != nil {
		return NPCSource{}, err
	}
	commonlog.GetLogger(logName).Infof("saved scripts of npc %s", npc.UID)
	return s.npcSource(ctx, npc), nil
}

// LoadItem returns the decompiled script of the item with entityID.
func (s *Session) LoadItem(ctx context.Context, entityID string) (ItemSource, error) {
	item, err := s.store.FindItem(ctx, entityID)
	if err != nil {
		return ItemSource{}, err
	}
	return ItemSource{
		UID:      item.UID,
		EntityID: item.EntityID,
		Script:   compiler.Decompile(ctx, item.Script, s.annotator),
	}, nil
}

// SaveItem compiles and writes the script of the item with entityID.
func (s *Session) SaveItem(ctx context.Context, entityID, source string) (ItemSource, error) {
	item, err := s.store.FindItem(ctx, entityID)
	if err != nil {
		return ItemSource{}, err
	}
	packed, err := compiler.Compile(source)
	if err != nil {
		return ItemSource{}, ScriptErrors{{Script: "Item", Err: err}}
	}
	if err := s.store.SaveItemScript(ctx, item.UID, packed); err != nil {
		return ItemSource{}, err
	}
	commonlog.GetLogger(logName).Infof("saved script of item %s (%s)", entityID, item.UID)
	return ItemSource{
		UID:      item.UID,
		EntityID: item.EntityID,
		Script:   compiler.Decompile(ctx, packed, s.annotator),
	}, nil
}

func (s *Session) npcSource(ctx context.Context, npc storage.NPC) NPCSource {
	src := NPCSource{UID: npc.UID, NameUID: npc.NameUID}
	for _, slot := range storage.Slots() {
		src.Scripts[slot] = compiler.Decompile(ctx, npc.Scripts[slot], s.annotator)
	}
	return src
}
