// Package upstream fetches hierarchy JSON from the remote services behind the proxy.
//
// Fetches never retry. Failures come back as a Result carrying a *FetchError.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"github.com/Sternrassler/hierarchy-proxy/pkg/logging"
)

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hierarchy_upstream_requests_total",
		Help: "Total upstream requests by method and outcome",
	}, []string{"method", "outcome"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hierarchy_upstream_request_duration_seconds",
		Help:    "Upstream request duration in seconds by method",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method"})
)

// Fetcher is the fetch collaborator used by the hierarchy handlers.
type Fetcher interface {
	// PostJSON sends payload as a JSON body.
	PostJSON(ctx context.Context, url string, payload any) Result

	// Get issues a plain GET.
	Get(ctx context.Context, url string) Result
}

// Config holds the client configuration.
type Config struct {
	// Timeout bounds each request, including reading the body.
	Timeout time.Duration

	// UserAgent is sent on every request when non-empty.
	UserAgent string

	// HTTPClient overrides the default transport (tests).
	HTTPClient *http.Client
}

// Client implements Fetcher over resty.
type Client struct {
	rest    *resty.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// New creates an upstream client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(timeout)
	}

	rest := resty.NewWithClient(httpClient)
	if cfg.UserAgent != "" {
		rest.SetHeader("User-Agent", cfg.UserAgent)
	}

	return &Client{
		rest:    rest,
		timeout: timeout,
		logger:  logging.NewLogger("upstream"),
	}
}

// PostJSON sends payload marshalled as JSON with Content-Type: application/json.
func (c *Client) PostJSON(ctx context.Context, url string, payload any) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return Failure(fmt.Errorf("marshal request payload: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)

	return c.finish(http.MethodPost, url, start, resp, err)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, url string) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.rest.R().
		SetContext(ctx).
		Get(url)

	return c.finish(http.MethodGet, url, start, resp, err)
}

// Close releases the underlying client resources.
func (c *Client) Close() error {
	return c.rest.Close()
}

func (c *Client) finish(method, url string, start time.Time, resp *resty.Response, err error) Result {
	upstreamRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	if err != nil {
		class := classifyErr(err)
		upstreamRequestsTotal.WithLabelValues(method, string(class)).Inc()
		c.logger.Debug().Err(err).Str("method", method).Str("url", url).Msg("Upstream request failed")
		return Failure(&FetchError{Method: method, URL: url, Class: class, Err: err})
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		class := classifyStatus(status)
		upstreamRequestsTotal.WithLabelValues(method, string(class)).Inc()
		c.logger.Debug().Str("method", method).Str("url", url).Int("status", status).Msg("Upstream returned non-2xx")
		return Failure(&FetchError{Method: method, URL: url, StatusCode: status, Class: class})
	}

	upstreamRequestsTotal.WithLabelValues(method, "success").Inc()
	c.logger.Debug().
		Str("method", method).
		Str("url", url).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Msg("Upstream request succeeded")

	return Success(status, resp.Bytes())
}
