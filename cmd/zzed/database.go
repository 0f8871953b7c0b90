package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/zzed/bundle"
	"github.com/chazu/zzed/editor"
	"github.com/chazu/zzed/storage"
)

// scriptExt is the extension of mnemonic script files written by
// `npc get -o` and read by `npc put`.
const scriptExt = ".zzs"

// withSession opens the database and runs fn on an editing session whose
// decompiled output is annotated from the same database.
func (c *cli) withSession(fn func(*editor.Session) error) error {
	engine, store, err := c.engine()
	if err != nil {
		return err
	}
	if store == nil {
		return errNoDatabase
	}
	defer store.Close()
	return fn(editor.NewSession(store, engine))
}

// npc handles `zzed npc get|put`.
func (c *cli) npc(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: zzed npc get|put ...")
	}
	switch args[0] {
	case "get":
		fs := newFlagSet("npc get")
		outDir := fs.String("o", "", "Write <dir>/<Slot>.zzs instead of printing")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errors.New("usage: zzed npc get [-o dir] <uid>")
		}
		return c.withSession(func(s *editor.Session) error {
			src, err := s.LoadNPC(ctx, fs.Arg(0))
			if err != nil {
				return err
			}
			if *outDir != "" {
				return writeSlotFiles(*outDir, src)
			}
			for _, slot := range storage.Slots() {
				fmt.Fprintf(c.stdout, "==> %s <==\n%s", slot, src.Scripts[slot])
			}
			return nil
		})

	case "put":
		fs := newFlagSet("npc put")
		nameUID := fs.String("name", "", "Change the NPC's name label")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 2 {
			return errors.New("usage: zzed npc put [-name uid] <uid> <dir>")
		}
		dir := fs.Arg(1)
		src := editor.NPCSource{UID: fs.Arg(0), NameUID: *nameUID}
		for _, slot := range storage.Slots() {
			data, err := os.ReadFile(slotFile(dir, slot))
			if err != nil {
				return err
			}
			src.Scripts[slot] = string(data)
		}
		return c.withSession(func(s *editor.Session) error {
			saved, err := s.SaveNPC(ctx, src)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "Saved npc %s\n", saved.UID)
			return writeSlotFiles(dir, saved)
		})

	default:
		return fmt.Errorf("unknown npc subcommand: %s", args[0])
	}
}

func slotFile(dir string, slot storage.Slot) string {
	return filepath.Join(dir, slot.String()+scriptExt)
}

func writeSlotFiles(dir string, src editor.NPCSource) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, slot := range storage.Slots() {
		if err := os.WriteFile(slotFile(dir, slot), []byte(src.Scripts[slot]), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// item handles `zzed item get|put`.
func (c *cli) item(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: zzed item get|put ...")
	}
	switch args[0] {
	case "get":
		if len(args) < 2 || len(args) > 3 {
			return errors.New("usage: zzed item get <entityId> [file]")
		}
		return c.withSession(func(s *editor.Session) error {
			src, err := s.LoadItem(ctx, args[1])
			if err != nil {
				return err
			}
			if len(args) == 3 {
				return os.WriteFile(args[2], []byte(src.Script), 0o644)
			}
			_, err = fmt.Fprint(c.stdout, src.Script)
			return err
		})

	case "put":
		if len(args) != 3 {
			return errors.New("usage: zzed item put <entityId> <file>")
		}
		source, err := c.readInput(args[2])
		if err != nil {
			return err
		}
		return c.withSession(func(s *editor.Session) error {
			saved, err := s.SaveItem(ctx, args[1], source)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "Saved item %s (%s)\n", saved.EntityID, saved.UID)
			return nil
		})

	default:
		return fmt.Errorf("unknown item subcommand: %s", args[0])
	}
}

// list handles `zzed list npcs|items`.
func (c *cli) list(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: zzed list npcs|items")
	}
	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	switch args[0] {
	case "npcs":
		npcs, err := store.ListNPCs(ctx)
		if err != nil {
			return err
		}
		for _, n := range npcs {
			fmt.Fprintf(c.stdout, "%s\t%s\n", n.UID, n.Name)
		}
	case "items":
		items, err := store.ListItems(ctx)
		if err != nil {
			return err
		}
		for _, it := range items {
			fmt.Fprintf(c.stdout, "%s\t%s\t%s\n", it.EntityID, it.UID, it.Name)
		}
	default:
		return fmt.Errorf("cannot list %q (want npcs or items)", args[0])
	}
	return nil
}

// export handles `zzed export npc|item <owner> <file>`.
func (c *cli) export(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: zzed export npc|item <owner> <file>")
	}
	kind := bundle.Kind(args[0])
	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	b, err := bundle.Export(ctx, store, kind, args[1])
	if err != nil {
		return err
	}
	if err := bundle.WriteFile(args[2], b); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Exported %s %s as bundle %s\n", b.Kind, b.Owner, b.ID)
	return nil
}

// importBundle handles `zzed import [-target owner] <file>`.
func (c *cli) importBundle(ctx context.Context, args []string) error {
	fs := newFlagSet("import")
	target := fs.String("target", "", "Owner to write to (default: the bundle's owner)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: zzed import [-target owner] <file>")
	}

	b, err := bundle.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := bundle.Import(ctx, store, b, *target); err != nil {
		return err
	}
	owner := *target
	if owner == "" {
		owner = b.Owner
	}
	fmt.Fprintf(c.stdout, "Imported bundle %s into %s %s\n", b.ID, b.Kind, owner)
	return nil
}
