package gutendex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	cache "github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Catalog defines the read operations folio needs from the book API.
// This interface is implemented by *Client and can be used for testing.
type Catalog interface {
	ListBooks(ctx context.Context, query Query) (*BookList, error)
	FetchBook(ctx context.Context, id int) (*Book, error)
	FetchPage(ctx context.Context, cursor string) (*BookList, error)
}

// Ensure Client implements Catalog at compile time.
var _ Catalog = (*Client)(nil)

var (
	// ErrNotFound is returned for an unknown book id or a page past the end.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("catalog api unavailable")
	// ErrForeignCursor is returned by FetchPage for a cursor on another host.
	ErrForeignCursor = errors.New("cursor names a foreign host")
)

// StatusError reports an HTTP error status from the API.
type StatusError struct {
	Path   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// Client talks to the Gutendex HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[[]byte]
	cache     *cache.Cache
	logger    *log.Logger
}

const (
	// DefaultAPIURL is the public Gutendex instance.
	DefaultAPIURL = "https://gutendex.com"

	defaultUserAgent = "folio/0.1"
	requestTimeout   = 15 * time.Second
	maxBodyBytes     = 8 << 20

	breakerTripAfter = 3
	breakerCooldown  = 30 * time.Second
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRateLimit caps outgoing requests per second. A non-positive rate
// disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithCacheTTL keeps successful responses for ttl. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.cache = nil
			return
		}
		c.cache = cache.New(ttl, 2*ttl)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the API rooted at apiURL.
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "gutendex",
		Timeout: breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripAfter
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Available reports whether requests are currently allowed through.
func (c *Client) Available() bool {
	return c.breaker.State() != gobreaker.StateOpen
}

// ListBooks retrieves one page of /books matching query.
func (c *Client) ListBooks(ctx context.Context, query Query) (*BookList, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: c.booksPath(), RawQuery: query.Values().Encode()}
	var payload BookList
	if err := c.doURL(ctx, rel, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// BooksByIDs retrieves the given ids, one page at a time.
func (c *Client) BooksByIDs(ctx context.Context, ids []int, page int) (*BookList, error) {
	if len(ids) == 0 {
		return &BookList{}, nil
	}
	return c.ListBooks(ctx, Query{IDs: ids, Page: page})
}

// FetchBook retrieves a single book by id.
func (c *Client) FetchBook(ctx context.Context, id int) (*Book, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if id <= 0 {
		return nil, fmt.Errorf("book id required")
	}
	rel := &url.URL{Path: c.booksPath() + strconv.Itoa(id) + "/"}
	var payload Book
	if err := c.doURL(ctx, rel, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchPage follows a next/previous cursor returned in a BookList. The
// cursor is treated as opaque apart from being rebased onto the configured
// API host.
func (c *Client) FetchPage(ctx context.Context, cursor string) (*BookList, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	u, err := url.Parse(strings.TrimSpace(cursor))
	if err != nil || cursor == "" {
		return nil, fmt.Errorf("invalid cursor %q", cursor)
	}
	if u.Host != "" && !strings.EqualFold(u.Host, c.baseURL.Host) {
		return nil, fmt.Errorf("%w: %q is not on %s", ErrForeignCursor, cursor, c.baseURL.Host)
	}
	if !strings.HasPrefix(u.Path, c.booksPath()) && u.Path+"/" != c.booksPath() {
		return nil, fmt.Errorf("cursor %q is not a books listing", cursor)
	}
	rel := &url.URL{Path: u.Path, RawQuery: u.RawQuery}
	var payload BookList
	if err := c.doURL(ctx, rel, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) booksPath() string {
	return path.Join("/", c.baseURL.Path, "books") + "/"
}

func (c *Client) doURL(ctx context.Context, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel).String()

	if c.cache != nil {
		if cached, ok := c.cache.Get(reqURL); ok {
			c.logger.Debug("cache hit", "url", reqURL)
			return decode(cached.([]byte), dest)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	started := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.get(ctx, reqURL, rel.Path)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		c.logger.Debug("request failed", "url", reqURL, "err", err)
		return err
	}
	c.logger.Debug("request ok", "url", reqURL, "bytes", len(body), "elapsed", time.Since(started))

	if err := decode(body, dest); err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.SetDefault(reqURL, body)
	}
	return nil
}

func (c *Client) get(ctx context.Context, reqURL, apiPath string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, apiPath)
	}
	if resp.StatusCode >= 400 {
		return nil, &StatusError{Path: apiPath, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func decode(body []byte, dest any) error {
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// countsAsSuccess keeps caller mistakes and cancellations from tripping the
// breaker; only transport failures and 5xx responses count against the API.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status < 500
	}
	return false
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = DefaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
