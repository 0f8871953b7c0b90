package server

import (
	"context"
	"sync"
	"testing"

	"connectrpc.com/connect"

	"github.com/chazu/zzed/annotate"
	"github.com/chazu/zzed/editor"
	"github.com/chazu/zzed/storage"
)

// ---------------------------------------------------------------------------
// Shared test infrastructure for server package tests.
//
// Services run against an in-memory store holding one NPC and one item, and
// an annotation engine backed by a static resolver.
// ---------------------------------------------------------------------------

type memStore struct {
	mu    sync.Mutex
	npcs  map[string]storage.NPC
	items map[string]storage.Item // by entity id
}

func newMemStore() *memStore {
	rafi := storage.NPC{UID: "N0000014", NameUID: "A0000041", NameSuffix: "12"}
	rafi.Scripts[storage.SlotInit] = "6.1.2.17\n!.4F1A2B06.0\n7\n"
	rafi.Scripts[storage.SlotTrigger] = "%\n"
	return &memStore{
		npcs:  map[string]storage.NPC{rafi.UID: rafi},
		items: map[string]storage.Item{"3": {UID: "I0000013", EntityID: "3", Script: "$.1\n"}},
	}
}

func (m *memStore) LoadNPC(_ context.Context, uid string) (storage.NPC, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	npc, ok := m.npcs[uid]
	if !ok {
		return storage.NPC{}, storage.ErrNotFound
	}
	return npc, nil
}

func (m *memStore) SaveNPC(_ context.Context, npc storage.NPC) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.npcs[npc.UID] = npc
	return nil
}

func (m *memStore) FindItem(_ context.Context, entityID string) (storage.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[entityID]
	if !ok {
		return storage.Item{}, storage.ErrNotFound
	}
	return item, nil
}

func (m *memStore) SaveItemScript(_ context.Context, uid, script string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, item := range m.items {
		if item.UID == uid {
			item.Script = script
			m.items[id] = item
			return nil
		}
	}
	return storage.ErrNotFound
}

func newTestEngine() *annotate.Engine {
	return annotate.New(&annotate.StaticResolver{
		Dialogs: map[string]string{"4F1A2B06": "Hello Amy!"},
		Fairies: map[string]string{"17": "Sillia"},
	})
}

// testEnv bundles a service with the store and worker behind it.
type testEnv struct {
	Store   *memStore
	Worker  *EditWorker
	Service *ScriptService
}

// newTestEnv creates a ScriptService with a database. The worker is stopped
// when the test ends.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	engine := newTestEngine()
	worker := NewEditWorker(editor.NewSession(store, engine))
	t.Cleanup(worker.Stop)
	return &testEnv{
		Store:   store,
		Worker:  worker,
		Service: NewScriptService(worker, engine),
	}
}

// ---------------------------------------------------------------------------
// Request builder helpers
// ---------------------------------------------------------------------------

func connectReq[T any](msg *T) *connect.Request[T] {
	return connect.NewRequest(msg)
}

func bg() context.Context {
	return context.Background()
}
