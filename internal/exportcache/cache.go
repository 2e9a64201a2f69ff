// Package exportcache is a SQLite-backed cache of export artifacts,
// keyed by the content key of the model they were generated from.
//
// A model's content key is the SHA-256 of its canonical serialized
// form, so a cache hit is exact: the cached artifact was generated from
// a byte-identical model by the same target. Writes are idempotent for
// the same reason.
//
// The database runs in WAL mode with a single writer connection;
// concurrent readers are fine, concurrent processes serialize on the
// busy timeout.
package exportcache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
const currentSchemaVersion = 1

// ErrMiss reports that no artifact is cached under the given key and
// target.
var ErrMiss = errors.New("exportcache: miss")

// Cache is a handle on one cache database.
type Cache struct {
	db *sql.DB
}

// Open creates or opens the cache database at path. Pragmas and schema
// are applied on every open; the call is idempotent.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect cache: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY
	// from our own pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Put stores an artifact under (key, target). Re-putting an existing
// pair is a no-op: the key is content-addressed, so the bytes cannot
// differ.
func (c *Cache) Put(ctx context.Context, key, target string, artifact []byte) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO artifacts (content_key, target, artifact, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(content_key, target) DO NOTHING
	`, key, target, artifact, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("put artifact: %w", err)
	}
	return nil
}

// Get returns the artifact cached under (key, target), or ErrMiss.
func (c *Cache) Get(ctx context.Context, key, target string) ([]byte, error) {
	var artifact []byte
	err := c.db.QueryRowContext(ctx, `
		SELECT artifact FROM artifacts
		WHERE content_key = ? AND target = ?
	`, key, target).Scan(&artifact)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return artifact, nil
}

// Contains reports whether (key, target) is cached without reading the
// artifact.
func (c *Cache) Contains(ctx context.Context, key, target string) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx, `
		SELECT 1 FROM artifacts
		WHERE content_key = ? AND target = ?
	`, key, target).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("probe artifact: %w", err)
	}
	return true, nil
}

// Delete removes every artifact cached under key, for all targets.
// Deleting an absent key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM artifacts WHERE content_key = ?`, key); err != nil {
		return fmt.Errorf("delete artifacts: %w", err)
	}
	return nil
}

// Len returns the number of cached artifacts.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM artifacts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count artifacts: %w", err)
	}
	return n, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("cache schema version %d is newer than this build supports (%d)",
			version, currentSchemaVersion)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
