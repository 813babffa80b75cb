package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/company/gopm/internal/logging"
)

const (
	maxResponseSize = 10 << 20 // 10 MB
	defaultPerPage  = 10
)

// Option configures a provider.
type Option func(*client)

// client holds what GitHub and GitLab providers share.
type client struct {
	baseURL    string
	token      string
	language   string
	perPage    int
	httpClient *http.Client
	cache      *Cache
}

func newClient(baseURL string, opts ...Option) *client {
	c := &client{
		baseURL:    baseURL,
		perPage:    defaultPerPage,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      NewCache(5 * time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseURL overrides the API base URL, for self-hosted instances and tests.
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithToken sets the API token.
func WithToken(token string) Option {
	return func(c *client) { c.token = token }
}

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithPerPage limits the number of results requested.
func WithPerPage(n int) Option {
	return func(c *client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithLanguage restricts results to repositories in a language. Only GitHub
// supports this filter.
func WithLanguage(lang string) Option {
	return func(c *client) { c.language = lang }
}

// WithCache replaces the provider's result cache.
func WithCache(cache *Cache) Option {
	return func(c *client) { c.cache = cache }
}

// get performs a GET request and returns the response body. authorize sets the
// provider-specific credentials header.
func (c *client) get(ctx context.Context, provider, url string, authorize func(*http.Request)) ([]byte, error) {
	logging.FromContext(ctx).Debug("search request", "provider", provider, "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" && authorize != nil {
		authorize(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		if rl := rateLimit(provider, resp.Header); rl != nil {
			return nil, rl
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Provider: provider, StatusCode: resp.StatusCode, URL: url}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}

	ct := resp.Header.Get("Content-Type")
	if strings.Contains(ct, "text/html") {
		return nil, fmt.Errorf("received HTML response from %s (expected JSON); check the provider URL", url)
	}

	return data, nil
}

// rateLimit returns a RateLimitError if the headers report an exhausted quota.
func rateLimit(provider string, h http.Header) *RateLimitError {
	remaining := h.Get("X-RateLimit-Remaining")
	if remaining == "" {
		remaining = h.Get("RateLimit-Remaining")
	}
	if remaining != "0" {
		return nil
	}

	e := &RateLimitError{Provider: provider}
	reset := h.Get("X-RateLimit-Reset")
	if reset == "" {
		reset = h.Get("RateLimit-Reset")
	}
	if secs, err := strconv.ParseInt(reset, 10, 64); err == nil {
		e.Reset = time.Unix(secs, 0)
	}
	return e
}

// Query runs term against every provider in order and concatenates the
// results. The first provider error aborts the query.
func Query(ctx context.Context, providers []Provider, term string) ([]Result, error) {
	var all []Result
	for _, p := range providers {
		results, err := p.Search(ctx, term)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}
