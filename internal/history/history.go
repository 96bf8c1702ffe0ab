// Package history records resolved tracks in a local SQLite database so they
// can be listed and replayed later without another lookup.
package history

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"instatrack/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS resolutions (
	identifier  TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	author      TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	is_stream   INTEGER NOT NULL,
	artwork_url TEXT NOT NULL DEFAULT '',
	source_name TEXT NOT NULL,
	playback    BLOB NOT NULL,
	resolved_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS resolutions_resolved_at ON resolutions (resolved_at DESC);
`

// Entry is one remembered resolution.
type Entry struct {
	Track      *media.Track
	ResolvedAt time.Time
}

// Store is a SQLite-backed resolution history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the clock used to stamp saved entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens or creates the history database at path.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records t, replacing any earlier entry with the same identifier.
func (s *Store) Save(ctx context.Context, t *media.Track) error {
	var blob bytes.Buffer
	if err := media.EncodeTrack(&blob, t); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO resolutions (identifier, title, author, duration_ms, is_stream, artwork_url, source_name, playback, resolved_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(identifier) DO UPDATE SET
	title = excluded.title,
	author = excluded.author,
	duration_ms = excluded.duration_ms,
	is_stream = excluded.is_stream,
	artwork_url = excluded.artwork_url,
	source_name = excluded.source_name,
	playback = excluded.playback,
	resolved_at = excluded.resolved_at`,
		t.Identifier, t.Title, t.Author, t.DurationMillis, t.IsStream,
		t.ArtworkURL, t.SourceName, blob.Bytes(), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// List returns up to limit entries, most recent first. A limit of zero or
// less returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT identifier, title, author, duration_ms, is_stream, artwork_url, source_name, playback, resolved_at
FROM resolutions
ORDER BY resolved_at DESC, identifier
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			info       media.TrackInfo
			playback   []byte
			resolvedAt int64
		)
		if err := rows.Scan(&info.Identifier, &info.Title, &info.Author, &info.DurationMillis,
			&info.IsStream, &info.ArtworkURL, &info.SourceName, &playback, &resolvedAt); err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}

		t, err := media.DecodeTrack(info, bytes.NewReader(playback))
		if err != nil {
			continue // Skip corrupt rows
		}
		entries = append(entries, Entry{Track: t, ResolvedAt: time.UnixMilli(resolvedAt)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	return entries, nil
}

// Remove deletes the entry for identifier. Removing a missing entry is not
// an error.
func (s *Store) Remove(ctx context.Context, identifier string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM resolutions WHERE identifier = ?`, identifier); err != nil {
		return fmt.Errorf("removing history entry: %w", err)
	}
	return nil
}

// FormatForDisplay creates one display line per entry.
func FormatForDisplay(entries []Entry) []string {
	var items []string
	for _, e := range entries {
		display := fmt.Sprintf("%s - %s", e.Track.Author, e.Track.Title)
		if e.Track.HasDuration() {
			d := time.Duration(e.Track.DurationMillis) * time.Millisecond
			display += fmt.Sprintf(" [%s]", d.Round(time.Second))
		} else {
			display += " [stream]"
		}
		items = append(items, display)
	}
	return items
}
