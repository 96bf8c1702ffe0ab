// Package server exposes track resolution over HTTP alongside health and
// Prometheus endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"instatrack/internal/source"
)

const shutdownTimeout = 10 * time.Second

// Resolver turns an identifier into a lookup result.
type Resolver interface {
	Load(ctx context.Context, identifier string) (source.Result, error)
}

type Server struct {
	addr     string
	logger   *zap.Logger
	server   *http.Server
	resolver Resolver
}

// New builds a server listening on addr. Metrics are served from gatherer.
func New(addr string, resolver Resolver, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{addr: addr, logger: logger, resolver: resolver}

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.routes(gatherer),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the server's request router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) routes(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"instatrack"}`))
	})

	mux.HandleFunc("GET /resolve", s.handleResolve)

	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("url")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing url parameter"})
		return
	}

	res, err := s.resolver.Load(r.Context(), id)
	if err != nil {
		var fe *source.FriendlyError
		if errors.As(err, &fe) {
			writeJSON(w, statusFor(fe.Severity), errorBody{Error: fe.Message, Severity: fe.Severity.String()})
			return
		}
		s.logger.Error("Unclassified resolve error", zap.String("url", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Severity: source.Fault.String()})
		return
	}

	switch res.Kind {
	case source.Resolved:
		writeJSON(w, http.StatusOK, res.Track)
	case source.NoTrack:
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "not an Instagram post or reel URL"})
	}
}

type errorBody struct {
	Error    string `json:"error"`
	Severity string `json:"severity,omitempty"`
}

func statusFor(sev source.Severity) int {
	switch sev {
	case source.Common:
		return http.StatusTooManyRequests
	case source.Suspicious:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.addr))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}
