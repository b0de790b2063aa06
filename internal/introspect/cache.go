package introspect

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"erp-migrator/internal/schema"
)

// DefaultCacheTTL is how long a synced target schema stays fresh.
const DefaultCacheTTL = time.Hour

// ErrCacheMiss reports that no fresh schema exists for the connection.
// It wraps schema.ErrNotLoaded: a miss means sync before mapping.
var ErrCacheMiss = fmt.Errorf("target schema cache miss: %w", schema.ErrNotLoaded)

// Cache persists introspected target schemas between runs, keyed by ERP
// connection identity. Entries expire after the TTL and read as misses.
type Cache struct {
	db  *sql.DB
	ttl time.Duration

	// now is swapped in tests to control expiry.
	now func() time.Time
}

// OpenCache opens or creates the cache database at path. Use ":memory:"
// for an ephemeral cache.
func OpenCache(path string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open schema cache: %w", err)
	}

	const ddl = `
CREATE TABLE IF NOT EXISTS target_schemas (
	connection TEXT PRIMARY KEY,
	fetched_at INTEGER NOT NULL,
	payload    BLOB NOT NULL
)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema cache: %w", err)
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached target schema for the connection, or ErrCacheMiss
// when absent or older than the TTL.
func (c *Cache) Get(ctx context.Context, connection string) (*schema.Target, error) {
	var (
		fetchedAt int64
		payload   []byte
	)

	row := c.db.QueryRowContext(ctx,
		`SELECT fetched_at, payload FROM target_schemas WHERE connection = ?`, connection)
	if err := row.Scan(&fetchedAt, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("read schema cache: %w", err)
	}

	if c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return nil, ErrCacheMiss
	}

	var target schema.Target
	if err := json.Unmarshal(payload, &target); err != nil {
		return nil, fmt.Errorf("decode cached schema: %w", err)
	}

	return &target, nil
}

// Put stores a freshly synced target schema for the connection, replacing
// any previous entry.
func (c *Cache) Put(ctx context.Context, connection string, target *schema.Target) error {
	payload, err := json.Marshal(target)
	if err != nil {
		return fmt.Errorf("encode schema for cache: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO target_schemas (connection, fetched_at, payload) VALUES (?, ?, ?)
		 ON CONFLICT(connection) DO UPDATE SET fetched_at = excluded.fetched_at, payload = excluded.payload`,
		connection, c.now().Unix(), payload)
	if err != nil {
		return fmt.Errorf("write schema cache: %w", err)
	}

	return nil
}

// Invalidate drops the cached schema for the connection.
func (c *Cache) Invalidate(ctx context.Context, connection string) error {
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM target_schemas WHERE connection = ?`, connection)
	if err != nil {
		return fmt.Errorf("invalidate schema cache: %w", err)
	}

	return nil
}
