// Package extract turns a fetched Instagram post page into media details by
// running a cascade of independent parsing strategies over the same HTML.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Defaults applied to resolved media that carried no title or author.
const (
	DefaultTitle  = "Instagram Video"
	DefaultAuthor = "Unknown Artist"
)

// Strategy is one self-contained way of reading a post page. Extract fills
// fields that are still empty in current and reports whether it added any.
type Strategy interface {
	Name() string
	Extract(doc *Document, current Details) (Details, bool)
}

// ScrapingError means the page was fetched but no usable media could be
// read from it.
type ScrapingError struct {
	Reason string
	Err    error
}

func (e *ScrapingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scraping failed: %s: %v", e.Reason, e.Err)
	}
	return "scraping failed: " + e.Reason
}

func (e *ScrapingError) Unwrap() error { return e.Err }

// Pipeline runs the primary strategies in order, stopping as soon as the
// details are complete, and consults the fallback only when no primary
// strategy found anything.
type Pipeline struct {
	primary  []Strategy
	fallback Strategy
	logger   *zap.Logger
}

// New returns the standard pipeline: structured data, then meta tags, then
// the regex fallback.
func New(logger *zap.Logger) *Pipeline {
	return NewWithStrategies(logger, []Strategy{Structured{}, DOM{}}, Fallback{})
}

// NewWithStrategies builds a pipeline from explicit strategies. fallback may
// be nil.
func NewWithStrategies(logger *zap.Logger, primary []Strategy, fallback Strategy) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{primary: primary, fallback: fallback, logger: logger}
}

// Run extracts media details from html. A returned error is always a
// *ScrapingError.
func (p *Pipeline) Run(html string) (Details, error) {
	if strings.TrimSpace(html) == "" {
		return Details{}, &ScrapingError{Reason: "empty page content"}
	}

	doc := NewDocument(html)
	details := NewDetails()
	found := false

	for _, s := range p.primary {
		if details.Complete() {
			break
		}
		next, ok := s.Extract(doc, details)
		if !ok {
			p.logger.Debug("strategy found nothing", zap.String("strategy", s.Name()))
			continue
		}
		details, found = next, true
		p.logger.Debug("strategy contributed",
			zap.String("strategy", s.Name()),
			zap.Bool("complete", details.Complete()))
	}

	if !found && p.fallback != nil {
		p.logger.Warn("falling back to pattern matching", zap.String("strategy", p.fallback.Name()))
		if next, ok := p.fallback.Extract(doc, details); ok {
			details = next
		}
	}

	return finalize(details)
}

// finalize validates the media URL and fills display defaults.
func finalize(d Details) (Details, error) {
	d.VideoURL = unescapeURL(d.VideoURL)
	d.ThumbnailURL = unescapeURL(d.ThumbnailURL)

	if d.VideoURL == "" {
		return d, &ScrapingError{Reason: "no playable media url found"}
	}
	if err := validateMediaURL(d.VideoURL); err != nil {
		return d, &ScrapingError{Reason: "malformed media url", Err: err}
	}

	if d.Title == "" {
		d.Title = DefaultTitle
	}
	if d.Author == "" {
		d.Author = DefaultAuthor
	}
	return d, nil
}

func validateMediaURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q in %q", u.Scheme, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("no host in %q", raw)
	}
	return nil
}
