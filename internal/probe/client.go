// Package probe issues single exploratory HTTP requests against a Portainer
// server and reports what came back. One call, one request: no retries, no
// redirect following, no interpretation of the status code.
package probe

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bignellrp/portainer-api-action/internal/logger"
	"github.com/bignellrp/portainer-api-action/internal/proberr"
)

// maxBodySize caps how much of a response body is retained (1MB).
const maxBodySize = 1 * 1024 * 1024

// Client issues probe requests with the API key header attached.
type Client struct {
	client  *http.Client
	apiKey  string
	limiter *rate.Limiter
	log     *logger.Logger
}

// ClientConfig holds configuration for the probe client.
type ClientConfig struct {
	APIKey        string
	Timeout       time.Duration
	RateLimit     float64 // probes per second; <= 0 disables pacing
	SkipTLSVerify bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:   15 * time.Second,
		RateLimit: 4,
	}
}

// NewClient creates a new probe client.
func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = logger.NewDefault()
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.SkipTLSVerify,
		},
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// A redirect is itself an answer worth reporting.
				return http.ErrUseLastResponse
			},
		},
		apiKey:  cfg.APIKey,
		limiter: limiter,
		log:     log.WithComponent("probe"),
	}
}

// Result is the outcome of a single probe. A transport failure is a
// distinct variant: StatusCode stays 0 and Err carries the categorized
// cause, so "no response" is never mistaken for a real status.
type Result struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Header     http.Header
	Duration   time.Duration
	Err        *proberr.ProbeError
}

// NoResponse reports whether the probe got no HTTP response at all.
func (r Result) NoResponse() bool {
	return r.Err != nil
}

// Do performs exactly one HTTP request. The API key header is always
// attached; Content-Type is set only when a body is present. Transport
// failures are returned inside the Result, not as an error — a probe that
// got no answer is still an observation.
func (c *Client) Do(ctx context.Context, method, url string, body []byte) Result {
	start := time.Now()
	result := Result{Method: method, URL: url}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			result.Err = proberr.Categorize(err, url)
			return result
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		result.Err = proberr.Categorize(err, url)
		return result
	}

	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		result.Err = proberr.Categorize(err, url)
		result.Duration = time.Since(start)
		c.log.WithError(result.Err).Debugf("probe got no response: %s %s", method, url)
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.Header = resp.Header

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		// Keep the status; a truncated body is still reportable.
		c.log.WithError(err).Debugf("failed to read response body: %s %s", method, url)
	}
	result.Body = string(data)
	result.Duration = time.Since(start)

	c.log.RequestEvent(method, url, resp.StatusCode, result.Duration)
	return result
}

// Get is shorthand for a body-less GET probe.
func (c *Client) Get(ctx context.Context, url string) Result {
	return c.Do(ctx, http.MethodGet, url, nil)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}
