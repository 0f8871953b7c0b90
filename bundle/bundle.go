// Package bundle moves the packed scripts of one NPC or item between game
// databases as a CBOR file.
//
// Bundles are encoded in canonical CBOR, so exporting the same scripts
// twice yields identical bytes apart from the bundle id. Imported scripts
// are validated before anything is written.
package bundle

import (
	"fmt"
	"os"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/chazu/zzed/compiler"
	"github.com/chazu/zzed/storage"
)

// FormatVersion is the bundle layout written by this package.
const FormatVersion = 1

// Kind is what a bundle holds scripts for.
type Kind string

const (
	KindNPC  Kind = "npc"
	KindItem Kind = "item"
)

// ItemScript is the script key of an item bundle.
const ItemScript = "Item"

// Bundle is the scripts of one NPC or item.
type Bundle struct {
	ID      string            `cbor:"1,keyasint"`
	Version uint8             `cbor:"2,keyasint"`
	Kind    Kind              `cbor:"3,keyasint"`
	Owner   string            `cbor:"4,keyasint"`           // NPC uid or item entity id
	NameUID string            `cbor:"5,keyasint,omitempty"` // NPC name label
	Scripts map[string]string `cbor:"6,keyasint"`           // slot name -> packed script
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bundle: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// New creates an empty bundle with a fresh id.
func New(kind Kind, owner string) *Bundle {
	return &Bundle{
		ID:      uuid.NewString(),
		Version: FormatVersion,
		Kind:    kind,
		Owner:   owner,
		Scripts: make(map[string]string),
	}
}

// FromNPC bundles all five scripts of an NPC.
func FromNPC(npc storage.NPC) *Bundle {
	b := New(KindNPC, npc.UID)
	b.NameUID = npc.NameUID
	for _, slot := range storage.Slots() {
		b.Scripts[slot.String()] = npc.Scripts[slot]
	}
	return b
}

// FromItem bundles the script of an item.
func FromItem(item storage.Item) *Bundle {
	b := New(KindItem, item.EntityID)
	b.Scripts[ItemScript] = item.Script
	return b
}

// Marshal serializes a bundle to canonical CBOR.
func Marshal(b *Bundle) ([]byte, error) {
	return cborEncMode.Marshal(b)
}

// Unmarshal deserializes a bundle and checks its format version.
func Unmarshal(data []byte) (*Bundle, error) {
	var b Bundle
	if err := cbor.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("bundle: unmarshal: %w", err)
	}
	if b.Version != FormatVersion {
		return nil, fmt.Errorf("bundle: unsupported format version %d", b.Version)
	}
	return &b, nil
}

// WriteFile marshals b into path.
func WriteFile(path string, b *Bundle) error {
	data, err := Marshal(b)
	if err != nil {
		return fmt.Errorf("bundle: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads and unmarshals the bundle stored in path.
func ReadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Verify checks that the bundle's kind and script keys fit each other and
// that every script is well-formed packed text.
func (b *Bundle) Verify() error {
	var wantKeys []string
	switch b.Kind {
	case KindNPC:
		for _, slot := range storage.Slots() {
			wantKeys = append(wantKeys, slot.String())
		}
	case KindItem:
		wantKeys = []string{ItemScript}
	default:
		return fmt.Errorf("bundle: unknown kind %q", b.Kind)
	}

	if len(b.Scripts) != len(wantKeys) {
		return fmt.Errorf("bundle: %s bundle has %d scripts, want %d", b.Kind, len(b.Scripts), len(wantKeys))
	}
	for _, key := range wantKeys {
		packed, ok := b.Scripts[key]
		if !ok {
			return fmt.Errorf("bundle: missing %s script", key)
		}
		if err := compiler.Validate(packed); err != nil {
			return fmt.Errorf("bundle: %s script:\n%w", key, err)
		}
	}
	return nil
}

// ScriptNames returns the script keys of b in sorted order.
func (b *Bundle) ScriptNames() []string {
	names := make([]string, 0, len(b.Scripts))
	for name := range b.Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
