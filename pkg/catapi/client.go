package catapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/geteduroam/discogen/pkg/logging"
	"github.com/geteduroam/discogen/pkg/models"
)

const (
	// DefaultBaseURL is the public CAT user API.
	DefaultBaseURL = "https://cat.eduroam.org/user/API.php"

	// DefaultTTL is how long answers are cached unless a call overrides it.
	DefaultTTL = 30 * time.Minute

	maxBodySize = 32 * 1024 * 1024
)

// Accepted content types.
const (
	AcceptJSON      = "application/json"
	AcceptHTML      = "text/html"
	AcceptEAPConfig = "application/eap-config"
)

// Client talks to the catalog API through a cache Store.
type Client struct {
	base    string
	ttl     time.Duration
	store   Store
	http    *http.Client
	nowFunc func() time.Time

	requests        atomic.Int64
	networkRequests atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithStore sets the cache store. The default is a FileStore in the OS temp dir.
func WithStore(s Store) Option {
	return func(c *Client) {
		c.store = s
	}
}

// WithTTL sets the default cache lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.ttl = ttl
	}
}

// WithHTTPClient sets the HTTP client used for network calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets a per-call timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// WithNowFunc sets the clock used for freshness checks.
func WithNowFunc(now func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = now
	}
}

// New creates a Client for the API at base.
// base must be an absolute URL with a host and without query or fragment.
func New(base string, opts ...Option) (*Client, error) {
	if err := validateBase(base); err != nil {
		return nil, err
	}

	c := &Client{
		base:    base,
		ttl:     DefaultTTL,
		http:    &http.Client{Timeout: 30 * time.Second},
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.store == nil {
		s, err := NewFileStore(afero.NewOsFs(), filepath.Join(os.TempDir(), "discogen"))
		if err != nil {
			return nil, err
		}
		c.store = s
	}

	return c, nil
}

func validateBase(base string) error {
	if strings.ContainsAny(base, "?#") {
		return fmt.Errorf("%w %q: query and fragment are not allowed", ErrMalformedBaseURL, base)
	}
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrMalformedBaseURL, base, err)
	}
	if u.Host == "" {
		return fmt.Errorf("%w %q: missing host", ErrMalformedBaseURL, base)
	}
	return nil
}

// Base returns the API base URL.
func (c *Client) Base() string {
	return c.base
}

// Store returns the cache store.
func (c *Client) Store() Store {
	return c.store
}

// Stats returns the request counters.
func (c *Client) Stats() models.FetchStats {
	return models.FetchStats{
		Requests:        c.requests.Load(),
		NetworkRequests: c.networkRequests.Load(),
	}
}

// URL returns the URL that q is sent to.
func (c *Client) URL(q Query, lang string) string {
	v := q.Values()
	if lang != "" {
		v.Set("lang", lang)
	}
	return c.base + "?" + v.Encode()
}

// Execute returns the raw answer to q, from the cache when an entry younger
// than ttl exists. A ttl of zero or less selects the client default.
func (c *Client) Execute(ctx context.Context, q Query, lang, accept string, ttl time.Duration) ([]byte, error) {
	c.requests.Add(1)
	if ttl <= 0 {
		ttl = c.ttl
	}

	name := EntryName(q, CacheKey(q, c.base, lang, accept))
	log := logging.FromContext(ctx).With(zap.String("action", q.Action), zap.String("entry", name))
	target := c.URL(q, lang)

	data, storedAt, err := c.store.Get(ctx, name)
	switch {
	case err == nil && c.nowFunc().Sub(storedAt) < ttl:
		if len(data) > 0 {
			log.Debug("catalog cache hit")
			return data, nil
		}
		return nil, c.evict(ctx, name, &FetchError{URL: target, Err: ErrEmptyResponse})
	case err != nil && !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("read cache entry %s: %w", name, err)
	}

	c.networkRequests.Add(1)
	log.Debug("catalog cache miss", zap.String("url", target))

	body, err := c.fetch(ctx, target, accept)
	if err != nil {
		return nil, c.evict(ctx, name, &FetchError{URL: target, Err: err})
	}
	if len(body) == 0 {
		return nil, c.evict(ctx, name, &FetchError{URL: target, Err: ErrEmptyResponse})
	}

	if err := c.store.Put(ctx, name, body); err != nil {
		return nil, fmt.Errorf("write cache entry %s: %w", name, err)
	}
	return body, nil
}

// evict removes the entry for name so the next call goes to the network,
// and returns cause joined with any removal failure.
func (c *Client) evict(ctx context.Context, name string, cause error) error {
	logging.FromContext(ctx).Debug("evicting catalog cache entry", zap.String("entry", name), zap.Error(cause))
	if err := c.store.Delete(ctx, name); err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Join(cause, fmt.Errorf("evict cache entry %s: %w", name, err))
	}
	return cause
}

func (c *Client) fetch(ctx context.Context, target, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("response body too large (exceeds %d bytes)", maxBodySize)
	}
	return body, nil
}
