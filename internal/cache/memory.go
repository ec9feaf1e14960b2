package cache

import (
	"context"
	"slices"
	"sync"

	"github.com/tidwall/btree"
)

// MemoryStore keeps entries in an ordered in-process map. Its lifetime is
// the process; it mostly serves --no-cache runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries *btree.Map[string, Entry]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: btree.NewMap[string, Entry](0),
	}
}

func (*MemoryStore) Name() string {
	return "memory"
}

func (*MemoryStore) Location() string {
	return "memory"
}

func (ms *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	e, ok := ms.entries.Get(key)
	if !ok {
		return Entry{}, false, nil
	}
	e.Payload = slices.Clone(e.Payload)
	return e, true, nil
}

func (ms *MemoryStore) Put(_ context.Context, entry Entry) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	entry.Payload = slices.Clone(entry.Payload)
	ms.entries.Set(entry.Key, entry)
	return nil
}

func (ms *MemoryStore) Delete(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.entries.Delete(key)
	return nil
}

func (ms *MemoryStore) Scan(ctx context.Context, fn func(Entry) bool) error {
	ms.mu.RLock()
	snapshot := ms.entries.Copy()
	ms.mu.RUnlock()

	var err error
	snapshot.Scan(func(_ string, e Entry) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		e.Payload = slices.Clone(e.Payload)
		return fn(e)
	})
	return err
}

func (ms *MemoryStore) Clear(_ context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.entries.Clear()
	return nil
}

func (ms *MemoryStore) Close() error {
	return nil
}
