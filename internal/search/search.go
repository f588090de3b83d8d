// Package search fetches web search results and formats them as prompt
// context.
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/logging"
)

const (
	DefaultEndpoint = "https://html.duckduckgo.com/html/"
	maxResults      = 10
	maxBodyBytes    = 2 << 20
)

// Result is one parsed search hit.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Searcher produces a formatted context block for a query. An empty string
// means no context is available.
type Searcher interface {
	Search(ctx context.Context, query string) string
}

// Config configures a Client.
type Config struct {
	Endpoint  string
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
	HTTP      *http.Client
}

// Client queries an HTML search endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	cache    *expirable.LRU[string, string]
	logger   *logging.Logger
}

// NewClient creates a Client. A CacheSize of zero disables caching.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.HTTP == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		cfg.HTTP = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	c := &Client{endpoint: cfg.Endpoint, http: cfg.HTTP, logger: logger}
	if cfg.CacheSize > 0 {
		c.cache = expirable.NewLRU[string, string](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return c
}

// Search returns the formatted results for query, or "" when the request
// fails or nothing was parsed.
func (c *Client) Search(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}
	if c.cache != nil {
		if hit, ok := c.cache.Get(query); ok {
			return hit
		}
	}

	results, err := c.Results(ctx, query)
	if err != nil {
		c.logger.Warn("web search failed", "error", err)
		return ""
	}
	formatted := Format(results)
	if formatted != "" && c.cache != nil {
		c.cache.Add(query, formatted)
	}
	return formatted
}

// Results fetches and parses the results page for query.
func (c *Client) Results(ctx context.Context, query string) ([]Result, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; thought-organizer)")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status code %d", resp.StatusCode)
	}

	results, err := Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}
	return results, nil
}

// Format renders results as a numbered context block ending with an
// instruction line. No results yields "".
func Format(results []Result) string {
	if len(results) == 0 {
		return ""
	}
	entries := make([]string, len(results))
	for i, r := range results {
		entries[i] = fmt.Sprintf("\n%d. %s\n   %s\n   Source: %s\n", i+1, r.Title, r.Snippet, r.Link)
	}
	return "Web Search Results:\n" + strings.Join(entries, "\n") +
		"\n\nBased on these search results, please provide your analysis."
}
