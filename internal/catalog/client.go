package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"amsvault/internal/logger"
)

const (
	appName        = "AMSVault"
	requestTimeout = 10 * time.Second
)

// Client performs JSON GET requests against one provider. A request is made
// exactly once: search results must come back inside a bounded time, so there
// are no retries.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Limiter paces requests to the provider's published rate; nil disables pacing.
	Limiter *rate.Limiter
}

// NewClient creates a client for baseURL allowing perSecond requests per second.
func NewClient(baseURL string, perSecond float64) *Client {
	c := &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
	if perSecond > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	}
	return c
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned non-200 status code %d: %s", e.StatusCode, e.Body)
}

// getJSON fetches BaseURL+path with the given query and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", fmt.Sprintf("%s/1.0", appName))
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode == http.StatusTooManyRequests {
			logger.LogMsg(logger.LogWarning, "Rate limit hit on %s", c.BaseURL)
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid JSON response: %w", err)
	}
	return nil
}
