// Package web fetches http(s) pages and turns them into plain text.
// It also extracts the links of a single page for URL-list registration;
// it never follows the links it finds.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/tagvault/internal/core/domain"
	"github.com/custodia-labs/tagvault/internal/core/ports/driven"
)

const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "tagvault/1.0"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodyBytes bounds the size of a fetched page.
	DefaultMaxBodyBytes int64 = 16 << 20

	// DefaultRate is the default number of requests per second.
	DefaultRate = 2.0

	// DefaultBurst is the default request burst.
	DefaultBurst = 4
)

// Ensure Loader implements the interfaces.
var (
	_ driven.Loader         = (*Loader)(nil)
	_ driven.LinkDiscoverer = (*Loader)(nil)
)

// Loader fetches web pages.
type Loader struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	limiter   *rate.Limiter

	mu       sync.RWMutex
	username string
	password string
}

// Option configures the loader.
type Option func(*Loader)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(l *Loader) {
		if ua != "" {
			l.userAgent = ua
		}
	}
}

// WithBasicAuth sets the credentials sent with every request.
func WithBasicAuth(username, password string) Option {
	return func(l *Loader) {
		l.username = username
		l.password = password
	}
}

// WithRateLimit throttles requests to rps per second with the given burst.
// A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(l *Loader) {
		if rps <= 0 {
			l.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxBodyBytes bounds the size of a fetched page.
func WithMaxBodyBytes(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// New creates a new web loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBodyBytes,
		limiter:   rate.NewLimiter(rate.Limit(DefaultRate), DefaultBurst),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the loader name.
func (l *Loader) Name() string {
	return "web"
}

// SetCredentials replaces the basic auth credentials, typically after the
// user answered a prompt for a protected page.
func (l *Loader) SetCredentials(username, password string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.username = username
	l.password = password
}

// HasCredentials reports whether basic auth credentials are set.
func (l *Loader) HasCredentials() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.username != ""
}

// Load fetches the page at desc and returns its readable text.
// HTML is stripped to text; other text types are returned as served.
func (l *Loader) Load(ctx context.Context, desc domain.SourceDescriptor) ([]domain.LoadedText, error) {
	if desc.Kind != domain.SourceURL {
		return nil, fmt.Errorf("%w: web loader reads URLs only", domain.ErrInvalidInput)
	}

	body, contentType, err := l.fetch(ctx, desc.Raw)
	if err != nil {
		return nil, err
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	hints := map[string]string{"url": desc.Raw, "content_type": mediaType}

	content := string(body)
	switch {
	case mediaType == "" || strings.Contains(mediaType, "html"):
		hints["format"] = "html"
		hints[domain.HintTitle] = extractTitle(content, desc.Raw)
		content = stripHTML(content)
	case strings.HasPrefix(mediaType, "text/"), mediaType == "application/json", mediaType == "application/xml":
		hints["format"] = "text"
	default:
		return nil, fmt.Errorf("%w: %s served %s", domain.ErrUnsupportedSourceType, desc.Raw, mediaType)
	}

	return []domain.LoadedText{{Text: strings.ToValidUTF8(content, "�"), Hints: hints}}, nil
}

// DiscoverLinks fetches pageURL and returns the absolute URLs of its anchors
// whose href contains contains, deduplicated in page order. An empty
// contains matches every http(s) link.
func (l *Loader) DiscoverLinks(ctx context.Context, pageURL, contains string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q is not an http(s) URL", domain.ErrInvalidInput, pageURL)
	}

	body, _, err := l.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return extractLinks(string(body), base, contains), nil
}

// fetch performs a throttled GET and classifies failures.
func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("%w: building request for %q: %v", domain.ErrInvalidInput, rawURL, err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	l.mu.RLock()
	if l.username != "" {
		req.SetBasicAuth(l.username, l.password)
	}
	l.mu.RUnlock()

	resp, err := l.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		var netErr net.Error
		if errors.As(err, &netErr) {
			return nil, "", fmt.Errorf("%w: fetching %s: %v", domain.ErrLoaderTransient, rawURL, err)
		}
		return nil, "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp, rawURL); err != nil {
		return nil, "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading %s: %v", domain.ErrLoaderTransient, rawURL, err)
	}
	if int64(len(body)) > l.maxBytes {
		return nil, "", fmt.Errorf("%w: %s is larger than %d bytes", domain.ErrInvalidInput, rawURL, l.maxBytes)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// classifyStatus maps HTTP status codes to domain errors.
func classifyStatus(resp *http.Response, rawURL string) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s returned %d", domain.ErrAuthRequired, rawURL, code)
	case code == http.StatusForbidden:
		return fmt.Errorf("%w: %s returned %d", domain.ErrAccessDenied, rawURL, code)
	case code == http.StatusNotFound, code == http.StatusGone:
		return fmt.Errorf("%w: %s returned %d", domain.ErrSourceNotFound, rawURL, code)
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout, code >= 500:
		return fmt.Errorf("%w: %s returned %d", domain.ErrLoaderTransient, rawURL, code)
	default:
		return fmt.Errorf("fetching %s: unexpected status %d", rawURL, code)
	}
}
