// Package source resolves Instagram post references into playable tracks. It
// ties together the page fetch, the extraction pipeline and the result cache,
// and turns every outcome into a track, a "no track" answer or a classified
// error.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"instatrack/internal/cache"
	"instatrack/internal/extract"
	"instatrack/internal/fetch"
	"instatrack/internal/media"
	"instatrack/internal/metrics"
)

// Kind distinguishes the non-error answers of a lookup.
type Kind int

const (
	// Declined means the identifier is not an Instagram post URL.
	Declined Kind = iota
	// NoTrack means the post exists in our vocabulary but has no media.
	NoTrack
	// Resolved means Track is set.
	Resolved
)

func (k Kind) String() string {
	switch k {
	case Declined:
		return "declined"
	case NoTrack:
		return "no_track"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Result is the answer to a successful lookup.
type Result struct {
	Kind  Kind
	Track *media.Track
}

// Fetcher retrieves a post page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetch.Outcome
}

// Extractor reads media details out of a post page.
type Extractor interface {
	Run(html string) (extract.Details, error)
}

// Manager answers lookups. It is safe for concurrent use.
type Manager struct {
	fetcher   Fetcher
	extractor Extractor
	cache     *cache.Cache
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithExtractor replaces the default extraction pipeline.
func WithExtractor(e Extractor) Option {
	return func(m *Manager) { m.extractor = e }
}

// WithCache replaces the default result cache.
func WithCache(c *cache.Cache) Option {
	return func(m *Manager) { m.cache = c }
}

// WithMetrics enables metric recording.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager that fetches pages with fetcher.
func NewManager(fetcher Fetcher, opts ...Option) *Manager {
	m := &Manager{
		fetcher: fetcher,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.extractor == nil {
		m.extractor = extract.New(m.logger)
	}
	if m.cache == nil {
		m.cache = cache.New(cache.DefaultSize, cache.DefaultTTL)
	}
	m.logger.Info("instagram source ready",
		zap.Int("cache_entries", m.cache.Len()))
	return m
}

// SourceName identifies the tracks this manager produces.
func (m *Manager) SourceName() string { return media.SourceName }

// Load resolves identifier. Unrecognized identifiers are declined without any
// network access. A returned error is always a *FriendlyError.
func (m *Manager) Load(ctx context.Context, identifier string) (Result, error) {
	if IsSearch(identifier) {
		m.logger.Warn("instagram search is not supported, only direct post and reel URLs",
			zap.String("identifier", identifier))
		return Result{Kind: NoTrack}, nil
	}

	ref, ok := ParseReference(identifier)
	if !ok {
		m.logger.Debug("identifier is not an instagram post url", zap.String("identifier", identifier))
		return Result{Kind: Declined}, nil
	}

	start := time.Now()
	defer m.metrics.ObserveLookup(start)

	if e, ok := m.cache.Get(ref.URL); ok {
		m.metrics.CacheHit(true)
		m.logger.Debug("cache hit", zap.String("url", ref.URL))
		if e.NotFound {
			return Result{Kind: NoTrack}, nil
		}
		return Result{Kind: Resolved, Track: e.Track}, nil
	}
	m.metrics.CacheHit(false)
	m.logger.Debug("cache miss", zap.String("url", ref.URL))

	return m.resolve(ctx, ref)
}

// resolve performs the uncached part of a lookup.
func (m *Manager) resolve(ctx context.Context, ref Reference) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = m.fail(ref, &FriendlyError{
				Message:  msgUnexpected,
				Severity: Fault,
				Cause:    fmt.Errorf("panic: %v", r),
			})
		}
	}()

	out := m.fetcher.Fetch(ctx, ref.URL)
	m.metrics.Fetched(out.Kind.String())

	switch out.Kind {
	case fetch.Success:
		return m.extractTrack(ref, out.Body)

	case fetch.NotFound:
		m.cache.PutNotFound(ref.URL)
		return Result{Kind: NoTrack}, nil

	case fetch.RateLimited:
		return Result{}, m.fail(ref, &FriendlyError{Message: msgRateLimited, Severity: Common})

	case fetch.AccessDenied:
		return Result{}, m.fail(ref, &FriendlyError{Message: msgAccessDenied, Severity: Suspicious})

	case fetch.Rejected:
		return Result{}, m.fail(ref, &FriendlyError{
			Message:  fmt.Sprintf(msgRejected, out.Status, out.Reason),
			Severity: Suspicious,
		})

	case fetch.NetworkError:
		return Result{}, m.fail(ref, &FriendlyError{Message: msgNetwork, Severity: Suspicious, Cause: out.Err})

	default:
		return Result{}, m.fail(ref, &FriendlyError{
			Message:  msgUnexpected,
			Severity: Fault,
			Cause:    fmt.Errorf("unhandled fetch outcome %v", out.Kind),
		})
	}
}

func (m *Manager) extractTrack(ref Reference, html string) (Result, error) {
	details, err := m.extractor.Run(html)
	if err != nil {
		// A page that parses to nothing is remembered like a missing post.
		m.cache.PutNotFound(ref.URL)
		return Result{}, m.fail(ref, &FriendlyError{Message: msgScraping, Severity: Suspicious, Cause: err})
	}

	track := newTrack(ref, details)
	m.cache.PutTrack(ref.URL, track)
	m.metrics.Extracted(details.Method)

	m.logger.Info("extracted instagram track",
		zap.String("method", details.Method),
		zap.String("title", track.Title),
		zap.String("author", track.Author),
		zap.String("url", track.PlaybackURL))

	return Result{Kind: Resolved, Track: track}, nil
}

// fail logs and counts a classified failure.
func (m *Manager) fail(ref Reference, fe *FriendlyError) error {
	m.metrics.Failed(fe.Severity.String())

	fields := []zap.Field{
		zap.String("url", ref.URL),
		zap.String("severity", fe.Severity.String()),
		zap.String("message", fe.Message),
	}
	if fe.Cause != nil {
		fields = append(fields, zap.Error(fe.Cause))
	}

	var se *extract.ScrapingError
	if fe.Severity == Fault || (fe.Cause != nil && !errors.As(fe.Cause, &se)) {
		m.logger.Error("failed to load instagram track", fields...)
	} else {
		m.logger.Warn("failed to load instagram track", fields...)
	}
	return fe
}

func newTrack(ref Reference, d extract.Details) *media.Track {
	duration := d.DurationMillis
	if duration <= 0 {
		duration = media.UnknownDuration
	}
	return &media.Track{
		TrackInfo: media.TrackInfo{
			Title:          d.Title,
			Author:         d.Author,
			DurationMillis: duration,
			Identifier:     ref.URL,
			IsStream:       d.IsStream,
			ArtworkURL:     d.ThumbnailURL,
			SourceName:     media.SourceName,
		},
		PlaybackURL: d.VideoURL,
	}
}

// Encode writes the compact form of a track produced by this manager.
func (m *Manager) Encode(w io.Writer, t *media.Track) error {
	return media.EncodeTrack(w, t)
}

// Decode rebuilds a track from its metadata and compact form.
func (m *Manager) Decode(info media.TrackInfo, data []byte) (*media.Track, error) {
	return media.DecodeTrack(info, bytes.NewReader(data))
}

// Shutdown releases cached results.
func (m *Manager) Shutdown() {
	m.logger.Info("shutting down instagram source", zap.Int("cache_entries", m.cache.Len()))
	m.cache.Purge()
}
