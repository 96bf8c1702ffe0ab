package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"instatrack/internal/media"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"), opts...)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testTrack(id, title string) *media.Track {
	return &media.Track{
		TrackInfo: media.TrackInfo{
			Title:          title,
			Author:         "someone",
			DurationMillis: 65000,
			Identifier:     id,
			ArtworkURL:     "https://cdn.example.com/t.jpg",
			SourceName:     media.SourceName,
		},
		PlaybackURL: "https://cdn.example.com/v.mp4?é=1",
	}
}

func TestSaveAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	track := testTrack("https://instagram.com/p/A", "First")
	if err := s.Save(ctx, track); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	entries, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if *entries[0].Track != *track {
		t.Errorf("List()[0] = %+v, want %+v", entries[0].Track, track)
	}
}

func TestSaveUpdatesExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.Save(ctx, testTrack("https://instagram.com/p/A", "Old title"))
	s.Save(ctx, testTrack("https://instagram.com/p/A", "New title"))

	entries, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after update, got %d", len(entries))
	}
	if entries[0].Track.Title != "New title" {
		t.Errorf("Title = %q, want New title", entries[0].Track.Title)
	}
}

func TestListOrderAndLimit(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := openTestStore(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	for _, id := range []string{"A", "B", "C"} {
		if err := s.Save(ctx, testTrack("https://instagram.com/p/"+id, id)); err != nil {
			t.Fatalf("Save(%s) error: %v", id, err)
		}
		now = now.Add(time.Minute)
	}

	entries, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Track.Title != "C" || entries[1].Track.Title != "B" {
		t.Errorf("order = %q, %q; want C, B", entries[0].Track.Title, entries[1].Track.Title)
	}
	if !entries[0].ResolvedAt.Equal(time.Date(2024, 1, 1, 12, 2, 0, 0, time.UTC)) {
		t.Errorf("ResolvedAt = %v", entries[0].ResolvedAt)
	}
}

func TestRemove(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.Save(ctx, testTrack("https://instagram.com/p/A", "A"))
	s.Save(ctx, testTrack("https://instagram.com/p/B", "B"))

	if err := s.Remove(ctx, "https://instagram.com/p/A"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if err := s.Remove(ctx, "https://instagram.com/p/missing"); err != nil {
		t.Errorf("Remove(missing) error: %v", err)
	}

	entries, _ := s.List(ctx, 0)
	if len(entries) != 1 || entries[0].Track.Title != "B" {
		t.Errorf("entries after Remove = %+v", entries)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	s.Save(ctx, testTrack("https://instagram.com/p/A", "A"))
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close()

	entries, _ := s.List(ctx, 0)
	if len(entries) != 1 {
		t.Errorf("expected 1 entry after reopen, got %d", len(entries))
	}
}

func TestFormatForDisplay(t *testing.T) {
	stream := testTrack("https://instagram.com/p/S", "Live")
	stream.DurationMillis = media.UnknownDuration

	items := FormatForDisplay([]Entry{
		{Track: testTrack("https://instagram.com/p/A", "Clip")},
		{Track: stream},
	})

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0] != "someone - Clip [1m5s]" {
		t.Errorf("items[0] = %q", items[0])
	}
	if !strings.HasSuffix(items[1], "[stream]") {
		t.Errorf("items[1] = %q, want stream marker", items[1])
	}
}
