package cache

import (
	"context"
	"time"
)

// Entry is one stored extraction. Entries are never modified: a refresh
// writes a new entry with a new ID under the same key.
type Entry struct {
	Key       string
	ID        string
	Payload   []byte
	CreatedAt time.Time
	TTL       time.Duration
}

// Expired reports whether now is past CreatedAt + TTL.
func (e Entry) Expired(now time.Time) bool {
	return now.After(e.CreatedAt.Add(e.TTL))
}

// Store persists entries by fingerprint. Implementations must be safe for
// concurrent use; concurrent writes to one key are last-write-wins.
type Store interface {
	// Name is the backend name, e.g. "memory" or "sqlite".
	Name() string
	// Location describes where entries live, e.g. a database path.
	Location() string

	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, key string) error
	// Scan calls fn for every entry in key order until fn returns false.
	Scan(ctx context.Context, fn func(Entry) bool) error
	Clear(ctx context.Context) error
	Close() error
}
