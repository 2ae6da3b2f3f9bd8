package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"avasile/pricetracker/config"
	"avasile/pricetracker/logger"
	"avasile/pricetracker/services/cache"
)

// Status classifies the result of a fetch
type Status int

const (
	// StatusSuccess means a 200 response with a readable body
	StatusSuccess Status = iota
	// StatusNotFound means the page does not exist (404)
	StatusNotFound
	// StatusRateLimited means the retailer throttled us (429)
	StatusRateLimited
	// StatusUnavailable means a transport-level failure (DNS, refused, TLS)
	StatusUnavailable
	// StatusError covers every other failure
	StatusError
)

// String returns the status name for logging
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNotFound:
		return "not_found"
	case StatusRateLimited:
		return "rate_limited"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "error"
	}
}

// Outcome is the classified result of fetching a single URL
type Outcome struct {
	Status     Status
	Body       []byte // UTF-8 page body, set on StatusSuccess only
	HTTPStatus int
	Err        error
}

// Client performs rate-limited HTTP GETs with a randomized browser identity.
// All retailer scrapers share one client, so the inter-request delay acts as
// a conservative global throttle rather than a per-retailer one.
type Client struct {
	httpClient *http.Client
	userAgents []string
	delay      time.Duration
	backoff    time.Duration
	blockTime  time.Duration
	blocklist  *cache.Blocklist
	log        *logger.Logger
}

// NewClient creates a fetch client from the application configuration.
// blocklist may be nil; rate-limit blocking is then disabled.
func NewClient(cfg *config.Config, blocklist *cache.Blocklist) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		MaxIdleConnsPerHost: 4,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.FetchTimeout,
			Transport: transport,
		},
		userAgents: cfg.UserAgents,
		delay:      cfg.RequestDelay,
		backoff:    cfg.RateLimitBackoff,
		blockTime:  cfg.RateLimitBlock,
		blocklist:  blocklist,
		log:        logger.ForComponent("fetch"),
	}
}

// Fetch GETs a URL and classifies the response. It never returns an error to
// the caller; every failure mode is folded into the Outcome.
func (c *Client) Fetch(ctx context.Context, rawURL string) Outcome {
	host := hostOf(rawURL)

	// A host that rate-limited us recently is skipped without a request.
	if c.blocklist != nil && c.blocklist.IsBlocked(host) {
		c.log.Debug().Str("host", host).Msg("Host is on the rate-limit block list, skipping")
		return Outcome{Status: StatusRateLimited}
	}

	// Conservative global throttle before every request.
	if err := c.wait(ctx, c.delay); err != nil {
		return Outcome{Status: StatusError, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Outcome{Status: StatusError, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// DNS, refused connection, reset, TLS: the whole retailer looks down.
		return Outcome{Status: StatusUnavailable, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := decodeBody(resp)
		if err != nil {
			return Outcome{Status: StatusError, HTTPStatus: resp.StatusCode, Err: err}
		}
		return Outcome{Status: StatusSuccess, Body: body, HTTPStatus: resp.StatusCode}

	case http.StatusNotFound:
		return Outcome{Status: StatusNotFound, HTTPStatus: resp.StatusCode}

	case http.StatusTooManyRequests, 430:
		c.block(host)
		c.log.Warn().Str("host", host).Dur("backoff", c.backoff).Msg("Rate limited")
		// Fixed backoff, then hand the classification back. The caller must
		// not retry past this point.
		if err := c.wait(ctx, c.backoff); err != nil {
			return Outcome{Status: StatusRateLimited, HTTPStatus: resp.StatusCode, Err: err}
		}
		return Outcome{Status: StatusRateLimited, HTTPStatus: resp.StatusCode}

	default:
		return Outcome{
			Status:     StatusError,
			HTTPStatus: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, rawURL),
		}
	}
}

// setHeaders sets browser-like headers with a random User-Agent from the pool
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgents[rand.Intn(len(c.userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ro-RO,ro;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("DNT", "1")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// block records a rate-limit block for a host
func (c *Client) block(host string) {
	if c.blocklist == nil {
		return
	}
	if err := c.blocklist.Block(host, c.blockTime); err != nil {
		c.log.Warn().Err(err).Str("host", host).Msg("Failed to record rate-limit block")
	}
}

// wait sleeps for d unless the context is cancelled first
func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// decodeBody reads the response body and converts it to UTF-8 if needed
func decodeBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	encoding, name, _ := charset.DetermineEncoding(body, resp.Header.Get("Content-Type"))
	if name == "utf-8" || name == "UTF-8" {
		return body, nil
	}

	decoded, err := io.ReadAll(encoding.NewDecoder().Reader(bytes.NewReader(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to convert body to UTF-8: %w", err)
	}
	return decoded, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
