package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/rinkstats/siahl/internal/cache"
)

// UserAgent is sent on every request. The site serves a reduced page to
// unknown agents.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_10_1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/39.0.2171.95 Safari/537.36"

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int // <= 0 disables throttling
	Pages             cache.PageStore
	PageTTL           time.Duration
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Client fetches pages from the league site. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	base       *url.URL
	limiter    *rate.Limiter
	pages      cache.PageStore
	pageTTL    time.Duration
	logger     *slog.Logger
}

// NewClient creates a fetcher with politeness throttling and an optional
// page cache.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(opts.RequestsPerMinute) / 60.0)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: httpClient,
		base:       base,
		limiter:    rate.NewLimiter(limit, 1),
		pages:      opts.Pages,
		pageTTL:    opts.PageTTL,
		logger:     logger,
	}, nil
}

// --------------------------------------------------------------------------
// Reload bypass
// --------------------------------------------------------------------------

type reloadKey struct{}

// WithReload marks ctx so fetches skip the page cache read. The fresh page is
// still written back.
func WithReload(ctx context.Context) context.Context {
	return context.WithValue(ctx, reloadKey{}, true)
}

func isReload(ctx context.Context) bool {
	v, _ := ctx.Value(reloadKey{}).(bool)
	return v
}

// --------------------------------------------------------------------------
// Fetching
// --------------------------------------------------------------------------

// URL builds the absolute URL for a page. Query keys are sorted, so the
// result doubles as the page cache key.
func (c *Client) URL(path string, params url.Values) string {
	u := *c.base
	u.Path += strings.TrimPrefix(path, "/")
	u.RawQuery = params.Encode()
	return u.String()
}

// Fetch retrieves a page and parses it into a document.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values) (*goquery.Document, error) {
	body, err := c.FetchBytes(ctx, path, params)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Page: path, Reason: err.Error()}
	}
	return doc, nil
}

// FetchBytes retrieves a page body, consulting the page cache first.
func (c *Client) FetchBytes(ctx context.Context, path string, params url.Values) ([]byte, error) {
	target := c.URL(path, params)

	if c.pages != nil && !isReload(ctx) {
		data, ok, err := c.pages.Load(ctx, target)
		if err != nil {
			c.logger.Warn("page cache read failed", "url", target, "error", err)
		} else if ok {
			c.logger.Debug("page cache hit", "url", target)
			return data, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: target, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{URL: target, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: target, Err: fmt.Errorf("read response body: %w", err)}
	}
	c.logger.Debug("fetched page", "url", target, "bytes", len(body), "elapsed", time.Since(start))

	if c.pages != nil {
		if err := c.pages.Store(ctx, target, body, c.pageTTL); err != nil {
			c.logger.Warn("page cache write failed", "url", target, "error", err)
		}
	}
	return body, nil
}
