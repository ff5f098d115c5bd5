// Package cache is the optional artifact cache sibling to the dependency
// source pool (spec.md §4.7): a SQLite-backed record of which packages
// have already been fetched, so a repeated install can skip the network.
package cache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Entry is one cached artifact, keyed by (ecosystem, name, version).
type Entry struct {
	Ecosystem    string    `db:"ecosystem"`
	Name         string    `db:"name"`
	Version      string    `db:"version"`
	SizeBytes    int64     `db:"size_bytes"`
	AccessCount  int       `db:"access_count"`
	DownloadedAt time.Time `db:"downloaded_at"`
	LastAccessAt time.Time `db:"last_access_at"`
}

type entryRow struct {
	Ecosystem    string `db:"ecosystem"`
	Name         string `db:"name"`
	Version      string `db:"version"`
	SizeBytes    int64  `db:"size_bytes"`
	AccessCount  int    `db:"access_count"`
	DownloadedAt string `db:"downloaded_at"`
	LastAccessAt string `db:"last_access_at"`
}

// EvictionPolicy bounds how long and how large the cache is allowed to grow.
type EvictionPolicy struct {
	MaxAgeDays  int
	MaxSizeMB   int64
}

// Cache is a SQLite-backed artifact cache.
type Cache struct {
	db *sqlx.DB
}

// Open opens (creating if necessary) the SQLite database at dsn and runs
// its migrations.
func Open(dsn string) (*Cache, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, newError("Open", "", "failed to open database", ErrConnectionFailed)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, newError("Open", "", "failed to ping database", ErrConnectionFailed)
	}
	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, newError("Open", "", err.Error(), ErrMigrationFailed)
	}
	return &Cache{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{NoTxWrap: true})
	if err != nil {
		return err
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Put records or refreshes an artifact's cache entry.
func (c *Cache) Put(ctx context.Context, ecosystem, name, version string, sizeBytes int64) error {
	now := time.Now().Format(time.RFC3339)
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO cache_entries (ecosystem, name, version, size_bytes, access_count, downloaded_at, last_access_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(ecosystem, name, version) DO UPDATE SET
			size_bytes = excluded.size_bytes,
			access_count = cache_entries.access_count + 1,
			last_access_at = excluded.last_access_at
	`, ecosystem, name, version, sizeBytes, now, now)
	if err != nil {
		return newError("Put", "cache_entry", err.Error(), err)
	}
	return nil
}

// Get looks up a cached artifact and, if found, touches its
// last-access-at/access-count (a lookup counts as a use).
func (c *Cache) Get(ctx context.Context, ecosystem, name, version string) (Entry, error) {
	var row entryRow
	err := c.db.GetContext(ctx, &row, `
		SELECT ecosystem, name, version, size_bytes, access_count, downloaded_at, last_access_at
		FROM cache_entries WHERE ecosystem = ? AND name = ? AND version = ?
	`, ecosystem, name, version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, newError("Get", "cache_entry", err.Error(), err)
	}

	if _, err := c.db.ExecContext(ctx, `
		UPDATE cache_entries SET access_count = access_count + 1, last_access_at = ?
		WHERE ecosystem = ? AND name = ? AND version = ?
	`, time.Now().Format(time.RFC3339), ecosystem, name, version); err != nil {
		return Entry{}, newError("Get", "cache_entry", err.Error(), err)
	}

	return rowToEntry(row), nil
}

// ListEvictable returns entries violating policy — downloaded MaxAgeDays
// or more ago (timestamps have one-second resolution) or pushing the total
// cache past MaxSizeMB — ordered least-recently-used first.
func (c *Cache) ListEvictable(ctx context.Context, policy EvictionPolicy) ([]Entry, error) {
	var rows []entryRow
	cutoff := time.Now().AddDate(0, 0, -policy.MaxAgeDays).Format(time.RFC3339)
	err := c.db.SelectContext(ctx, &rows, `
		SELECT ecosystem, name, version, size_bytes, access_count, downloaded_at, last_access_at
		FROM cache_entries
		WHERE downloaded_at <= ?
		ORDER BY last_access_at ASC
	`, cutoff)
	if err != nil {
		return nil, newError("ListEvictable", "cache_entry", err.Error(), err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	var totalBytes int64
	if err := c.db.GetContext(ctx, &totalBytes, `SELECT COALESCE(SUM(size_bytes), 0) FROM cache_entries`); err != nil {
		return nil, newError("ListEvictable", "cache_entry", err.Error(), err)
	}
	if totalBytes <= policy.MaxSizeMB*1024*1024 {
		return entries, nil
	}

	var lru []entryRow
	if err := c.db.SelectContext(ctx, &lru, `
		SELECT ecosystem, name, version, size_bytes, access_count, downloaded_at, last_access_at
		FROM cache_entries ORDER BY last_access_at ASC
	`); err != nil {
		return nil, newError("ListEvictable", "cache_entry", err.Error(), err)
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[cacheKey(e.Ecosystem, e.Name, e.Version)] = true
	}
	for _, row := range lru {
		key := cacheKey(row.Ecosystem, row.Name, row.Version)
		if seen[key] {
			continue
		}
		entries = append(entries, rowToEntry(row))
		seen[key] = true
	}
	return entries, nil
}

// Evict deletes a single cache entry.
func (c *Cache) Evict(ctx context.Context, ecosystem, name, version string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE ecosystem = ? AND name = ? AND version = ?`, ecosystem, name, version)
	if err != nil {
		return newError("Evict", "cache_entry", err.Error(), err)
	}
	return nil
}

func cacheKey(ecosystem, name, version string) string {
	return ecosystem + "/" + name + "@" + version
}

func rowToEntry(row entryRow) Entry {
	downloadedAt, _ := time.Parse(time.RFC3339, row.DownloadedAt)
	lastAccessAt, _ := time.Parse(time.RFC3339, row.LastAccessAt)
	return Entry{
		Ecosystem: row.Ecosystem, Name: row.Name, Version: row.Version, SizeBytes: row.SizeBytes,
		AccessCount: row.AccessCount, DownloadedAt: downloadedAt, LastAccessAt: lastAccessAt,
	}
}
