package util

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Safari/605.1.15",
}

// Client is the shared scraping HTTP client: browser User-Agent, per-host
// pacing through a HostLimiter, and a bounded retry with backoff when a
// board answers 429 or 503.
type Client struct {
	inner      *http.Client
	limiter    *HostLimiter
	maxRetries int
	retryBase  time.Duration
}

func NewClient(limiter *HostLimiter) *Client {
	return NewClientWith(&http.Client{Timeout: 30 * time.Second}, limiter)
}

// NewClientWith runs the same politeness stack over a caller-supplied
// http.Client (custom transports, test servers).
func NewClientWith(inner *http.Client, limiter *HostLimiter) *Client {
	return &Client{
		inner:      inner,
		limiter:    limiter,
		maxRetries: 3,
		retryBase:  2 * time.Second,
	}
}

// Get fetches one URL with the full politeness stack applied.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	if err := c.limiter.WaitHost(ctx, req.URL.Host); err != nil {
		return nil, err
	}

	status := 0
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		resp, err := c.inner.Do(req)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", rawURL, err)
		}
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
			return resp, nil
		}

		status = resp.StatusCode
		resp.Body.Close()
		backoff := time.Duration(1<<uint(attempt)) * c.retryBase
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("get %s: status %d after %d attempts", rawURL, status, c.maxRetries)
}
