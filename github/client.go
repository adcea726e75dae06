// Package github lists a user's public repositories through the GitHub REST
// API, with optional token auth and a Redis-backed response cache.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"devconnector/apperror"
	"devconnector/cache"
	"devconnector/metrics"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL = "https://api.github.com"
	userAgent      = "devconnector"
	notFoundMsg    = "No Github profile found"
	maxBodyBytes   = 1 << 20
)

type Options struct {
	BaseURL  string
	Token    string
	Cache    *cache.Cache
	CacheTTL time.Duration
	Timeout  time.Duration
}

type Client struct {
	http    *http.Client
	baseURL string
	cache   *cache.Cache
	ttl     time.Duration
	group   singleflight.Group
}

// NewClient builds a client. With a token every request carries it as a
// bearer credential, which lifts GitHub's anonymous rate limit.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	hc := &http.Client{}
	if opts.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		hc = oauth2.NewClient(context.Background(), src)
	}
	hc.Timeout = opts.Timeout

	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		cache:   opts.Cache,
		ttl:     opts.CacheTTL,
	}
}

func cacheKey(username string) string {
	return "github:repos:" + strings.ToLower(username)
}

// Repos returns the five oldest-created public repositories of username as
// GitHub rendered them.
func (c *Client) Repos(ctx context.Context, username string) (json.RawMessage, error) {
	key := cacheKey(username)

	if body, found, err := c.cache.Get(ctx, key); err != nil {
		slog.WarnContext(ctx, "github cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if found {
		metrics.GithubRequests.WithLabelValues("hit").Inc()
		return json.RawMessage(body), nil
	}

	// The shared fetch outlives any single caller; each caller only stops
	// waiting when its own context ends.
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.fetch(context.WithoutCancel(ctx), username)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		metrics.GithubRequests.WithLabelValues("error").Inc()
		return nil, apperror.Upstream(notFoundMsg, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		metrics.GithubRequests.WithLabelValues("error").Inc()
		return nil, res.Err
	}
	metrics.GithubRequests.WithLabelValues("miss").Inc()

	body := res.Val.([]byte)
	if c.ttl > 0 {
		if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
			slog.WarnContext(ctx, "github cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return json.RawMessage(body), nil
}

func (c *Client) fetch(ctx context.Context, username string) ([]byte, error) {
	q := url.Values{}
	q.Set("per_page", "5")
	q.Set("sort", "created:asc")
	endpoint := fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, url.PathEscape(username), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperror.Upstream(notFoundMsg, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperror.Upstream(notFoundMsg, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Upstream(notFoundMsg, fmt.Errorf("github returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperror.Upstream(notFoundMsg, err)
	}
	if !json.Valid(body) {
		return nil, apperror.Upstream(notFoundMsg, fmt.Errorf("github returned invalid JSON"))
	}
	return body, nil
}
