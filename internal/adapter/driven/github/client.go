// Package github implements the PlatformClient port using the go-github library.
package github

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"

	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PlatformClient = (*Client)(nil)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com/"

// Options configures NewClient. Zero values select the public API and a 15s timeout.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Client implements the driven.PlatformClient port for one user's OAuth token.
//
// Two go-github clients share the token: gh talks to the API directly and
// serves every write plus collaborator checks, listing goes through an
// ETag cache so repeated pull request scans revalidate instead of refetching.
type Client struct {
	gh      *gh.Client
	listing *gh.Client
	logger  *slog.Logger
}

// NewClient creates a GitHub API client with the following transport stack:
//  1. oauth2 (bearer token for the user)
//  2. httpcache (ETag-based conditional request caching, listing client only)
//  3. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  4. go-github (GitHub REST API client)
func NewClient(token string, opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})

	direct := github_ratelimit.NewClient(&oauth2.Transport{Source: source, Base: http.DefaultTransport})
	direct.Timeout = opts.Timeout

	cached := github_ratelimit.NewClient(&oauth2.Transport{Source: source, Base: httpcache.NewMemoryCacheTransport()})
	cached.Timeout = opts.Timeout

	c := &Client{
		gh:      gh.NewClient(direct),
		listing: gh.NewClient(cached),
		logger:  opts.Logger,
	}
	if err := c.setBaseURL(opts.BaseURL); err != nil {
		return nil, err
	}
	return c, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	c := &Client{
		gh:      gh.NewClient(httpClient),
		listing: gh.NewClient(httpClient),
		logger:  slog.Default(),
	}
	if err := c.setBaseURL(baseURL); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) setBaseURL(baseURL string) error {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parsing base URL: %w", err)
	}
	c.gh.BaseURL = u
	c.listing.BaseURL = u
	return nil
}

// logRateLimit logs the GitHub API rate limit status after each call.
func (c *Client) logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	c.logger.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		c.logger.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// repoPath builds "repos/{owner}/{repo}/<suffix>" with escaped path segments.
func repoPath(owner, repo string, suffix ...string) string {
	parts := []string{"repos", url.PathEscape(owner), url.PathEscape(repo)}
	parts = append(parts, suffix...)
	return strings.Join(parts, "/")
}
