package bundle

import (
	"context"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/zzed/storage"
)

const logName = "zzed.bundle"

// Store is the part of the game database bundles are moved through.
type Store interface {
	LoadNPC(ctx context.Context, uid string) (storage.NPC, error)
	SaveNPC(ctx context.Context, npc storage.NPC) error
	FindItem(ctx context.Context, entityID string) (storage.Item, error)
	SaveItemScript(ctx context.Context, uid, script string) error
}

// Export reads the scripts of the NPC or item owner into a bundle.
func Export(ctx context.Context, store Store, kind Kind, owner string) (*Bundle, error) {
	switch kind {
	case KindNPC:
		npc, err := store.LoadNPC(ctx, owner)
		if err != nil {
			return nil, err
		}
		return FromNPC(npc), nil
	case KindItem:
		item, err := store.FindItem(ctx, owner)
		if err != nil {
			return nil, err
		}
		return FromItem(item), nil
	default:
		return nil, fmt.Errorf("bundle: unknown kind %q", kind)
	}
}

// Import verifies b and writes its scripts to target, an NPC uid or item
// entity id of the bundle's kind. An empty target imports onto the
// bundle's own owner. The NPC name is kept from the target row.
func Import(ctx context.Context, store Store, b *Bundle, target string) error {
	if err := b.Verify(); err != nil {
		return err
	}
	if target == "" {
		target = b.Owner
	}

	switch b.Kind {
	case KindNPC:
		npc, err := store.LoadNPC(ctx, target)
		if err != nil {
			return err
		}
		for _, slot := range storage.Slots() {
			npc.Scripts[slot] = b.Scripts[slot.String()]
		}
		if err := store.SaveNPC(ctx, npc); err != nil {
			return err
		}
	case KindItem:
		item, err := store.FindItem(ctx, target)
		if err != nil {
			return err
		}
		if err := store.SaveItemScript(ctx, item.UID, b.Scripts[ItemScript]); err != nil {
			return err
		}
	}

	commonlog.GetLogger(logName).Infof("imported %s bundle %s onto %s", b.Kind, b.ID, target)
	return nil
}
