package cmd

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"instatrack/internal/fetch"
	"instatrack/internal/source"
)

type missingFetcher struct {
	calls atomic.Int32
}

func (f *missingFetcher) Fetch(context.Context, string) fetch.Outcome {
	f.calls.Add(1)
	return fetch.Outcome{Kind: fetch.NotFound, Status: http.StatusNotFound}
}

func TestResolveAllKeepsInputOrder(t *testing.T) {
	f := &missingFetcher{}
	mgr := source.NewManager(f)

	ids := []string{
		"https://instagram.com/p/AAA/",
		"not a url",
		"igsearch:cats",
		"https://www.instagram.com/reel/BBB/",
	}
	got := resolveAll(context.Background(), mgr, ids, 2)

	want := []source.Kind{source.NoTrack, source.Declined, source.NoTrack, source.NoTrack}
	if len(got) != len(want) {
		t.Fatalf("got %d lookups, want %d", len(got), len(want))
	}
	for i, l := range got {
		if l.input != ids[i] {
			t.Errorf("lookup[%d].input = %q, want %q", i, l.input, ids[i])
		}
		if l.res.Kind != want[i] {
			t.Errorf("lookup[%d].Kind = %v, want %v", i, l.res.Kind, want[i])
		}
		if l.err != nil {
			t.Errorf("lookup[%d].err = %v", i, l.err)
		}
	}
	if n := f.calls.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2", n)
	}
}

func TestBuildLogger(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
	}{
		{"debug", true},
		{"info", false},
		{"WARN", false},
		{"bogus", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := buildLogger(tt.level)
			if err != nil {
				t.Fatalf("buildLogger() error: %v", err)
			}
			if got := l.Core().Enabled(-1); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}
