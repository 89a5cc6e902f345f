package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/goliatone/go-mapdirective/internal/validation"
)

const maxBodyBytes = 4 << 20

// Client performs rate limited JSON GET requests against one provider.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	timeout   time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithRateLimit caps requests per second. Zero or negative disables the limit.
func WithRateLimit(perSecond float64, burst int) ClientOption {
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

// WithLimiter installs a prepared limiter.
func WithLimiter(limiter *rate.Limiter) ClientOption {
	return func(c *Client) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(userAgent); trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// WithTimeout bounds each request. Zero leaves requests bounded only by the
// caller's context.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient builds a client with no rate limit and the default HTTP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:      http.DefaultClient,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		userAgent: "go-mapdirective",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// GetJSON fetches rawURL, checks the body against schema when one is given
// and decodes it into out. Every failure is reported as an external error
// attributed to provider.
func (c *Client) GetJSON(ctx context.Context, provider, rawURL string, schema *validation.PayloadSchema, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return providerError(err, provider, TextCodeProviderUnavailable, "rate limit wait", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return providerError(err, provider, TextCodeProviderUnavailable, "build request", nil)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return providerError(err, provider, TextCodeProviderUnavailable, "request failed", nil)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return providerError(
			fmt.Errorf("unexpected status %d", resp.StatusCode),
			provider,
			TextCodeProviderStatus,
			fmt.Sprintf("returned status %d", resp.StatusCode),
			map[string]any{"status": resp.StatusCode},
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return providerError(err, provider, TextCodeProviderUnavailable, "read body", nil)
	}

	if err := schema.ValidateJSON(body); err != nil {
		return providerError(err, provider, TextCodePayloadInvalid, "payload rejected", map[string]any{
			"issues": len(validation.Issues(err)),
		})
	}

	if err := json.Unmarshal(body, out); err != nil {
		return providerError(err, provider, TextCodePayloadInvalid, "parse response", nil)
	}
	return nil
}
