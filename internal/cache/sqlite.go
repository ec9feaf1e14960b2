package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tidwall/btree"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists entries in a SQLite database so they survive process
// restarts. An in-memory B-tree mirrors the key -> entry ID column for fast
// misses and ordered scans.
type SQLiteStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string

	keys *btree.Map[string, string]
}

// OpenSQLite opens or creates the cache database at path. The path can be
// ":memory:" for a database that lives as long as the store.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own database
		db.SetMaxOpenConns(1)
	}

	// WAL lets readers proceed while another process writes
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{
		db:   db,
		path: path,
		keys: btree.NewMap[string, string](0),
	}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	if err := store.loadKeys(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (ss *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS d2o_cache (
		key TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		payload BLOB NOT NULL,
		created_at INTEGER NOT NULL,
		ttl INTEGER NOT NULL
	);
	`
	_, err := ss.db.ExecContext(ctx, schema)
	return err
}

// loadKeys fills the B-tree from the key column.
func (ss *SQLiteStore) loadKeys(ctx context.Context) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	rows, err := ss.db.QueryContext(ctx, "SELECT key, id FROM d2o_cache")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, id string
		if err := rows.Scan(&key, &id); err != nil {
			return err
		}
		ss.keys.Set(key, id)
	}
	return rows.Err()
}

func (*SQLiteStore) Name() string {
	return "sqlite"
}

func (ss *SQLiteStore) Location() string {
	return ss.path
}

func (ss *SQLiteStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	if _, ok := ss.keys.Get(key); !ok {
		return Entry{}, false, nil
	}

	row := ss.db.QueryRowContext(ctx,
		"SELECT key, id, payload, created_at, ttl FROM d2o_cache WHERE key = ?", key)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (ss *SQLiteStore) Put(ctx context.Context, entry Entry) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	_, err := ss.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO d2o_cache (key, id, payload, created_at, ttl)
		VALUES (?, ?, ?, ?, ?)
	`, entry.Key, entry.ID, entry.Payload, entry.CreatedAt.UnixNano(), int64(entry.TTL))
	if err != nil {
		return err
	}
	ss.keys.Set(entry.Key, entry.ID)
	return nil
}

func (ss *SQLiteStore) Delete(ctx context.Context, key string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if _, err := ss.db.ExecContext(ctx, "DELETE FROM d2o_cache WHERE key = ?", key); err != nil {
		return err
	}
	ss.keys.Delete(key)
	return nil
}

func (ss *SQLiteStore) Scan(ctx context.Context, fn func(Entry) bool) error {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.QueryContext(ctx,
		"SELECT key, id, payload, created_at, ttl FROM d2o_cache ORDER BY key")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return err
		}
		if !fn(e) {
			break
		}
	}
	return rows.Err()
}

func (ss *SQLiteStore) Clear(ctx context.Context) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if _, err := ss.db.ExecContext(ctx, "DELETE FROM d2o_cache"); err != nil {
		return err
	}
	ss.keys.Clear()
	return nil
}

func (ss *SQLiteStore) Close() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.keys.Clear()
	return ss.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		e         Entry
		createdAt int64
		ttl       int64
	)
	if err := row.Scan(&e.Key, &e.ID, &e.Payload, &createdAt, &ttl); err != nil {
		return Entry{}, err
	}
	e.CreatedAt = time.Unix(0, createdAt)
	e.TTL = time.Duration(ttl)
	return e, nil
}
