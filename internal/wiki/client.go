package wiki

import (
	"context"
	"daily-shoutout/internal/metrics"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	breakerName = "wikimedia"

	// maxBodySize caps a single API response
	maxBodySize = 4 << 20

	DefaultBreakerTimeout = 5 * time.Second
)

// Config describes how to reach the encyclopedia APIs
type Config struct {
	WikipediaURL      string
	WikidataURL       string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	// BreakerTimeout is how long the breaker stays open before a trial request is let through
	BreakerTimeout time.Duration
	HTTPClient     *http.Client
}

// Client talks to Wikipedia and Wikidata
type Client struct {
	config  Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	metrics *metrics.Metrics
}

// NewClient creates a new encyclopedia client. m may be nil.
func NewClient(c Config, m *metrics.Metrics) *Client {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: c.Timeout}
	}

	limit := rate.Inf
	if c.RequestsPerSecond > 0 {
		limit = rate.Limit(c.RequestsPerSecond)
	}

	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = DefaultBreakerTimeout
	}

	m.SetBreakerState(breakerName, 0)

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     c.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 10
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("circuit breaker %s: %s -> %s", name, from, to)
			m.SetBreakerState(name, stateToFloat(to))
		},
	})

	return &Client{
		config:  c,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, 1),
		breaker: breaker,
		metrics: m,
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// RandomTitles returns up to limit random article titles from the main namespace
func (c *Client) RandomTitles(ctx context.Context, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "random")
	params.Set("rnnamespace", "0")
	params.Set("rnlimit", fmt.Sprintf("%d", limit))
	params.Set("format", "json")

	var resp randomResponse
	if err := c.getJSON(ctx, "random", c.apiURL(params), &resp); err != nil {
		return nil, errors.Wrap(err, "random titles")
	}

	titles := make([]string, 0, len(resp.Query.Random))
	for _, r := range resp.Query.Random {
		if r.Title == "" {
			continue
		}
		titles = append(titles, r.Title)
	}
	return titles, nil
}

func (c *Client) apiURL(params url.Values) string {
	return strings.TrimRight(c.config.WikipediaURL, "/") + "/w/api.php?" + params.Encode()
}

func (c *Client) entityURL(id string) string {
	return strings.TrimRight(c.config.WikidataURL, "/") + "/wiki/Special:EntityData/" + url.PathEscape(id) + ".json"
}

// getJSON fetches u through the rate limiter and circuit breaker and decodes the body into out.
// While the breaker is open it waits until the breaker half-opens instead of failing, so only
// requests that actually reached the upstream can fail.
func (c *Client) getJSON(ctx context.Context, endpoint, u string, out interface{}) error {
	var body []byte
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			c.metrics.ObserveUpstream(endpoint, "canceled")
			return errors.Wrap(err, "rate limiter")
		}

		var err error
		body, err = c.breaker.Execute(func() ([]byte, error) {
			return c.fetch(ctx, u)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.metrics.ObserveUpstream(endpoint, "failure")
			return err
		}

		c.metrics.ObserveUpstream(endpoint, "rejected")
		log.Debugf("circuit breaker open, waiting %s before retrying %s", c.config.BreakerTimeout, endpoint)
		if err := c.waitForBreaker(ctx); err != nil {
			return errors.Wrap(err, "circuit breaker open")
		}
	}

	if err := decode(body, out); err != nil {
		c.metrics.ObserveUpstream(endpoint, "malformed")
		return errors.Wrapf(err, "could not decode %s response", endpoint)
	}

	c.metrics.ObserveUpstream(endpoint, "success")
	return nil
}

func (c *Client) waitForBreaker(ctx context.Context) error {
	timer := time.NewTimer(c.config.BreakerTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", u)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, errors.Errorf("GET %s: unexpected status %d", u, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", u)
	}
	return body, nil
}
