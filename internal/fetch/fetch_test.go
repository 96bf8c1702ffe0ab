package fetch

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestFetchClassifiesStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantKind   Kind
		wantReason string
	}{
		{"ok", http.StatusOK, Success, ""},
		{"non-authoritative", http.StatusNonAuthoritativeInfo, Success, ""},
		{"not found", http.StatusNotFound, NotFound, "Not Found"},
		{"rate limited", http.StatusTooManyRequests, RateLimited, "Too Many Requests"},
		{"forbidden", http.StatusForbidden, AccessDenied, "Forbidden"},
		{"server error", http.StatusInternalServerError, Rejected, "Internal Server Error"},
		{"unauthorized", http.StatusUnauthorized, Rejected, "Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(tt.status)
				w.Write([]byte("<html>page</html>"))
			}))
			defer srv.Close()

			out := NewDispatcher(srv.Client()).Fetch(context.Background(), srv.URL+"/p/ABC/")
			if out.Kind != tt.wantKind {
				t.Fatalf("Fetch() kind = %v, want %v", out.Kind, tt.wantKind)
			}
			if out.Status != tt.status {
				t.Errorf("Status = %d, want %d", out.Status, tt.status)
			}
			if out.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", out.Reason, tt.wantReason)
			}
			if tt.wantKind == Success && out.Body != "<html>page</html>" {
				t.Errorf("Body = %q", out.Body)
			}
			if tt.wantKind != Success && out.Body != "" {
				t.Errorf("Body = %q, want empty for non-success", out.Body)
			}
		})
	}
}

func TestFetchSendsIdentityHeaders(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.Header.Get("User-Agent")] = true
		mu.Unlock()
		if r.Header.Get("Accept-Language") != "en-US,en;q=0.9" {
			t.Errorf("Accept-Language = %q", r.Header.Get("Accept-Language"))
		}
		if !strings.HasPrefix(r.Header.Get("Accept"), "text/html") {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	d := NewDispatcher(srv.Client(), WithRand(rand.New(rand.NewSource(1))))
	for i := 0; i < 60; i++ {
		d.Fetch(context.Background(), srv.URL)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, id := range DefaultIdentities {
		if !seen[id.UserAgent] {
			t.Errorf("identity %q never used in 60 requests", id.UserAgent)
		}
	}
}

func TestPickIsDeterministicWithSeed(t *testing.T) {
	a := NewDispatcher(nil, WithRand(rand.New(rand.NewSource(42))))
	b := NewDispatcher(nil, WithRand(rand.New(rand.NewSource(42))))

	for i := 0; i < 20; i++ {
		if a.pick() != b.pick() {
			t.Fatalf("pick() diverged at call %d with equal seeds", i)
		}
	}
}

func TestWithIdentities(t *testing.T) {
	only := Identity{UserAgent: "test-agent", Accept: "*/*", AcceptLanguage: "fr"}
	agents := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	NewDispatcher(srv.Client(), WithIdentities([]Identity{only})).Fetch(context.Background(), srv.URL)
	if got := <-agents; got != "test-agent" {
		t.Errorf("User-Agent = %q, want test-agent", got)
	}
}

func TestFetchDecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("caf\xe9"))
	}))
	defer srv.Close()

	out := NewDispatcher(srv.Client()).Fetch(context.Background(), srv.URL)
	if out.Kind != Success {
		t.Fatalf("Fetch() kind = %v, want success", out.Kind)
	}
	if out.Body != "café" {
		t.Errorf("Body = %q, want %q", out.Body, "café")
	}
}

func TestFetchCapsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(strings.Repeat("a", 4096)))
	}))
	defer srv.Close()

	out := NewDispatcher(srv.Client(), WithMaxBodyBytes(100)).Fetch(context.Background(), srv.URL)
	if len(out.Body) != 100 {
		t.Errorf("len(Body) = %d, want 100", len(out.Body))
	}
}

func TestFetchNetworkErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := srv.URL
	srv.Close()

	out := NewDispatcher(nil).Fetch(context.Background(), deadURL)
	if out.Kind != NetworkError || out.Err == nil {
		t.Errorf("Fetch() on closed server = %+v, want network error", out)
	}

	out = NewDispatcher(nil).Fetch(context.Background(), "://bad")
	if out.Kind != NetworkError {
		t.Errorf("Fetch() on malformed URL kind = %v, want network error", out.Kind)
	}
}

func TestFetchHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := NewDispatcher(srv.Client()).Fetch(ctx, srv.URL)
	if out.Kind != NetworkError {
		t.Errorf("Fetch() with cancelled context kind = %v, want network error", out.Kind)
	}
}

func TestKindString(t *testing.T) {
	if got := RateLimited.String(); got != "rate_limited" {
		t.Errorf("RateLimited.String() = %q", got)
	}
	if got := Kind(99).String(); got != "unknown" {
		t.Errorf("Kind(99).String() = %q", got)
	}
}
