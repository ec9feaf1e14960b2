// Package cache stores extracted subcommand trees by request fingerprint
// with a time-to-live.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MuntasirSZN/d2o/internal/log"
	"github.com/MuntasirSZN/d2o/internal/model"
)

// DefaultTTL is how long an entry stays valid unless configured otherwise.
const DefaultTTL = 24 * time.Hour

// Cache is a read-through, write-through layer over a Store. Its methods
// never let a damaged entry fail the caller: unreadable entries are
// removed and reported as misses.
type Cache struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger *log.Logger
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Cache) {
		c.logger = logger.Named("cache")
	}
}

func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a fresh copy of the tree stored under key if it exists and has
// not expired.
func (c *Cache) Get(ctx context.Context, key Key) (*model.Node, bool) {
	fp := key.Fingerprint()
	entry, ok, err := c.store.Get(ctx, fp)
	if err != nil {
		c.logger.Warn("cache lookup for %s failed: %v", key, err)
		return nil, false
	}
	if !ok {
		c.logger.Debug("cache miss for %s", key)
		return nil, false
	}
	if entry.Expired(c.now()) {
		c.logger.Debug("cache entry for %s expired at %s", key, entry.CreatedAt.Add(entry.TTL).Format(time.RFC3339))
		return nil, false
	}

	tree, err := decode(entry)
	if err != nil {
		c.logger.Warn("dropping cache entry for %s: %v", key, err)
		if err := c.store.Delete(ctx, fp); err != nil {
			c.logger.Warn("could not delete cache entry %s: %v", entry.ID, err)
		}
		return nil, false
	}
	c.logger.Debug("cache hit for %s (entry %s)", key, entry.ID)
	return tree, true
}

// Put stores tree under key as a new entry, replacing any previous one.
func (c *Cache) Put(ctx context.Context, key Key, tree *model.Node) error {
	payload, err := model.Encode(tree)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to create cache entry id: %w", err)
	}

	entry := Entry{
		Key:       key.Fingerprint(),
		ID:        id.String(),
		Payload:   payload,
		CreatedAt: c.now(),
		TTL:       c.ttl,
	}
	if err := c.store.Put(ctx, entry); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	c.logger.Debug("cached %s as entry %s", key, entry.ID)
	return nil
}

// Prune deletes expired and unreadable entries and returns how many were
// removed.
func (c *Cache) Prune(ctx context.Context) (int, error) {
	now := c.now()
	var stale []string
	err := c.store.Scan(ctx, func(e Entry) bool {
		if e.Expired(now) {
			stale = append(stale, e.Key)
		} else if _, err := decode(e); err != nil {
			stale = append(stale, e.Key)
		}
		return true
	})
	if err != nil {
		return 0, err
	}

	for _, key := range stale {
		if err := c.store.Delete(ctx, key); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Stats summarizes the store's contents.
type Stats struct {
	Backend  string
	Location string
	Total    int
	Valid    int
	Expired  int
	Bytes    int64
}

func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	now := c.now()
	stats := Stats{
		Backend:  c.store.Name(),
		Location: c.store.Location(),
	}
	err := c.store.Scan(ctx, func(e Entry) bool {
		stats.Total++
		stats.Bytes += int64(len(e.Payload))
		if e.Expired(now) {
			stats.Expired++
		} else {
			stats.Valid++
		}
		return true
	})
	return stats, err
}

func (c *Cache) Close() error {
	return c.store.Close()
}

func decode(e Entry) (*model.Node, error) {
	tree, err := model.Decode(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: entry %s: %v", model.ErrCacheCorrupt, e.ID, err)
	}
	return tree, nil
}
