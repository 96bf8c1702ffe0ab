// Package fetch performs the single page request behind each lookup and
// classifies the HTTP result. It never retries.
package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"instatrack/internal/httputil"
)

// DefaultMaxBodyBytes caps how much of a page is read.
const DefaultMaxBodyBytes = 5 << 20

// Kind classifies the result of a page request.
type Kind int

const (
	Success Kind = iota
	NotFound
	RateLimited
	AccessDenied
	Rejected
	NetworkError
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case NotFound:
		return "not_found"
	case RateLimited:
		return "rate_limited"
	case AccessDenied:
		return "access_denied"
	case Rejected:
		return "rejected"
	case NetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of one request. Body is set only for
// Success, Status for any response that arrived, Err for NetworkError.
type Outcome struct {
	Kind   Kind
	Body   string
	Status int
	Reason string
	Err    error
}

// Identity is one browser-like header profile.
type Identity struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
}

const (
	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"
	acceptLanguage = "en-US,en;q=0.9"
)

// DefaultIdentities is the rotation pool used when none is configured.
var DefaultIdentities = []Identity{
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",
		Accept:         acceptHTML,
		AcceptLanguage: acceptLanguage,
	},
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/114.0",
		Accept:         acceptHTML,
		AcceptLanguage: acceptLanguage,
	},
	{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15",
		Accept:         acceptHTML,
		AcceptLanguage: acceptLanguage,
	},
}

// Dispatcher issues page requests with a rotating identity.
type Dispatcher struct {
	client     *http.Client
	identities []Identity
	maxBytes   int64
	logger     *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRand replaces the identity selection source, e.g. with a seeded one.
func WithRand(r *rand.Rand) Option {
	return func(d *Dispatcher) { d.rnd = r }
}

// WithIdentities replaces the identity pool.
func WithIdentities(ids []Identity) Option {
	return func(d *Dispatcher) {
		if len(ids) > 0 {
			d.identities = ids
		}
	}
}

// WithMaxBodyBytes caps how many body bytes are read.
func WithMaxBodyBytes(n int64) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxBytes = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher. A nil client selects the hardened
// default client.
func NewDispatcher(client *http.Client, opts ...Option) *Dispatcher {
	if client == nil {
		client = httputil.NewClient(0)
	}
	d := &Dispatcher{
		client:     client,
		identities: DefaultIdentities,
		maxBytes:   DefaultMaxBodyBytes,
		logger:     zap.NewNop(),
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// pick selects an identity uniformly at random.
func (d *Dispatcher) pick() Identity {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.identities[d.rnd.Intn(len(d.identities))]
}

// Fetch requests pageURL and classifies the response.
func (d *Dispatcher) Fetch(ctx context.Context, pageURL string) Outcome {
	id := d.pick()
	d.logger.Debug("fetching page",
		zap.String("url", pageURL),
		zap.String("user_agent", id.UserAgent))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Outcome{Kind: NetworkError, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", id.UserAgent)
	req.Header.Set("Accept", id.Accept)
	req.Header.Set("Accept-Language", id.AcceptLanguage)

	resp, err := d.client.Do(req)
	if err != nil {
		return Outcome{Kind: NetworkError, Err: fmt.Errorf("requesting %s: %w", pageURL, err)}
	}
	defer func() {
		io.Copy(io.Discard, io.LimitReader(resp.Body, d.maxBytes))
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := http.StatusText(resp.StatusCode)
		d.logger.Warn("page request failed",
			zap.String("url", pageURL),
			zap.Int("status", resp.StatusCode),
			zap.String("reason", reason))
		return Outcome{Kind: classifyStatus(resp.StatusCode), Status: resp.StatusCode, Reason: reason}
	}

	body, err := readBody(resp, d.maxBytes)
	if err != nil {
		return Outcome{Kind: NetworkError, Status: resp.StatusCode, Err: fmt.Errorf("reading %s: %w", pageURL, err)}
	}

	return Outcome{Kind: Success, Status: resp.StatusCode, Body: body}
}

func classifyStatus(status int) Kind {
	switch status {
	case http.StatusNotFound:
		return NotFound
	case http.StatusTooManyRequests:
		return RateLimited
	case http.StatusForbidden:
		return AccessDenied
	default:
		return Rejected
	}
}

// readBody reads at most limit bytes and converts them to UTF-8 using the
// declared or sniffed charset.
func readBody(resp *http.Response, limit int64) (string, error) {
	r, err := charset.NewReader(io.LimitReader(resp.Body, limit), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decoding body: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
