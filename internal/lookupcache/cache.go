package lookupcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"vrcache/internal/vrcapi"
)

const schema = `
CREATE TABLE IF NOT EXISTS world_lookups (
    world_id      TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    author        TEXT,
    description   TEXT,
    thumbnail_url TEXT,
    cached_at     TEXT NOT NULL
);
`

// Entry is one cached lookup result.
type Entry struct {
	WorldID      string
	Name         string
	Author       string
	Description  string
	ThumbnailURL string
	CachedAt     time.Time
}

// Cache stores metadata lookups in SQLite.
type Cache struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database and applies the schema.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database file location.
func (c *Cache) Path() string {
	return c.path
}

// Get fetches a cached world by identifier. The second return value is false
// on a cache miss.
func (c *Cache) Get(ctx context.Context, worldID string) (*vrcapi.World, bool, error) {
	row := c.db.QueryRowContext(
		ctx,
		`SELECT world_id, name, author, description, thumbnail_url FROM world_lookups WHERE world_id = ?`,
		worldID,
	)
	var (
		id           string
		name         string
		author       sql.NullString
		description  sql.NullString
		thumbnailURL sql.NullString
	)
	if err := row.Scan(&id, &name, &author, &description, &thumbnailURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cached lookup: %w", err)
	}
	return &vrcapi.World{
		ID:           id,
		Name:         name,
		AuthorName:   author.String,
		Description:  description.String,
		ThumbnailURL: thumbnailURL.String,
	}, true, nil
}

// Put stores or replaces a lookup result.
func (c *Cache) Put(ctx context.Context, world *vrcapi.World) error {
	if world == nil || world.ID == "" {
		return errors.New("world with id required")
	}
	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO world_lookups (world_id, name, author, description, thumbnail_url, cached_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(world_id) DO UPDATE SET
             name = excluded.name, author = excluded.author,
             description = excluded.description, thumbnail_url = excluded.thumbnail_url,
             cached_at = excluded.cached_at`,
		world.ID,
		world.Name,
		nullableString(world.AuthorName),
		nullableString(world.Description),
		nullableString(world.ThumbnailURL),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store cached lookup: %w", err)
	}
	return nil
}

// Remove deletes a cached lookup by identifier.
func (c *Cache) Remove(ctx context.Context, worldID string) (bool, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM world_lookups WHERE world_id = ?`, worldID)
	if err != nil {
		return false, fmt.Errorf("delete cached lookup: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// List returns all cached entries, newest first.
func (c *Cache) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(
		ctx,
		`SELECT world_id, name, author, description, thumbnail_url, cached_at
         FROM world_lookups ORDER BY cached_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list cached lookups: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry        Entry
			author       sql.NullString
			description  sql.NullString
			thumbnailURL sql.NullString
			cachedRaw    string
		)
		if err := rows.Scan(&entry.WorldID, &entry.Name, &author, &description, &thumbnailURL, &cachedRaw); err != nil {
			return nil, err
		}
		entry.Author = author.String
		entry.Description = description.String
		entry.ThumbnailURL = thumbnailURL.String
		if cached, err := time.Parse(time.RFC3339Nano, cachedRaw); err == nil {
			entry.CachedAt = cached
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear removes every cached lookup and reports how many were removed.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM world_lookups`)
	if err != nil {
		return 0, fmt.Errorf("clear lookup cache: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of cached lookups.
func (c *Cache) Count(ctx context.Context) (int, error) {
	row := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM world_lookups`)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count cached lookups: %w", err)
	}
	return count, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
