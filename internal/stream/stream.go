// Package stream opens byte streams for resolved tracks and saves them to
// disk. Each source gets its own Streamer so platform quirks such as
// required headers stay out of the resolver.
package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"instatrack/internal/httputil"
	"instatrack/internal/media"
)

// Streamer produces a playable byte stream for a resolved media URL,
// starting offset bytes in.
type Streamer interface {
	Open(ctx context.Context, url string, offset int64) (io.ReadCloser, error)
}

// HTTPStreamer streams over plain HTTP range requests.
type HTTPStreamer struct {
	client  *http.Client
	headers http.Header
}

// NewHTTPStreamer creates a streamer that sends headers with every request.
func NewHTTPStreamer(client *http.Client, headers http.Header) *HTTPStreamer {
	if client == nil {
		client = httputil.NewClient(0)
	}
	return &HTTPStreamer{client: client, headers: headers.Clone()}
}

// New returns the streamer for tracks from sourceName.
func New(sourceName string, client *http.Client) Streamer {
	switch sourceName {
	case media.SourceName:
		return NewHTTPStreamer(client, http.Header{
			"Referer": {"https://www.instagram.com/"},
			"Origin":  {"https://www.instagram.com"},
		})
	default:
		return NewHTTPStreamer(client, nil)
	}
}

// Open implements Streamer.
func (s *HTTPStreamer) Open(ctx context.Context, url string, offset int64) (io.ReadCloser, error) {
	if err := httputil.ValidateURL(url); err != nil {
		return nil, fmt.Errorf("invalid media URL: %w", err)
	}
	if offset < 0 {
		return nil, fmt.Errorf("negative offset %d", offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range s.headers {
		req.Header[k] = v
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting media: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusPartialContent:
		return resp.Body, nil
	case resp.StatusCode == http.StatusOK:
		// Server ignored the range; skip to the offset ourselves.
		if offset > 0 {
			if _, err := io.CopyN(io.Discard, resp.Body, offset); err != nil {
				resp.Body.Close()
				return nil, fmt.Errorf("seeking to %d: %w", offset, err)
			}
		}
		return resp.Body, nil
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d for media", resp.StatusCode)
	}
}
