package rpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/metrics"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 3
	DefaultBackoffBase = time.Second
)

var (
	// ErrNotFound means the upstream answered 404: the resource is absent, not broken.
	ErrNotFound = errors.New("upstream resource not found")

	// ErrThrottled means every attempt was answered with 429.
	ErrThrottled = errors.New("upstream rate limited, retries exhausted")
)

// HTTPError is a non-success status other than 404 and 429.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if len(b) > 200 {
		b = b[:200]
	}
	if b == "" {
		return fmt.Sprintf("upstream http %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream http %d: %s", e.StatusCode, b)
}

// Request is a replayable outbound HTTP request.
type Request struct {
	Method string
	URL    string
	Body   []byte
	Header http.Header
}

// Response is a successful (2xx) upstream response.
type Response struct {
	StatusCode int
	Body       []byte
}

// CallerConfig holds configuration for a rate-limited caller
type CallerConfig struct {
	Name        string // metric label and breaker name
	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration

	HTTPClient     *http.Client // optional; Timeout is applied when nil
	Sleep          SleepFunc    // optional; ContextSleep when nil
	DisableBreaker bool

	Logger  *logrus.Logger
	Metrics *metrics.Metrics
}

// Caller performs HTTP calls with bounded retry on 429 and a circuit breaker.
type Caller struct {
	name        string
	httpClient  *http.Client
	maxAttempts int
	backoffBase time.Duration
	sleep       SleepFunc
	breaker     *gobreaker.CircuitBreaker
	logger      *logrus.Logger
	metrics     *metrics.Metrics
}

// NewCaller creates a caller with the given configuration
func NewCaller(cfg CallerConfig) *Caller {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Name == "" {
		cfg.Name = "upstream"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	if cfg.Sleep == nil {
		cfg.Sleep = ContextSleep
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	c := &Caller{
		name:        cfg.Name,
		httpClient:  cfg.HTTPClient,
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
		sleep:       cfg.Sleep,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}

	if !cfg.DisableBreaker {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     cfg.Name,
			Interval: 60 * time.Second,
			Timeout:  30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: healthyOutcome,
			OnStateChange: func(name string, from, to gobreaker.State) {
				cfg.Logger.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("circuit breaker state change")
			},
		})
	}

	return c
}

// Do sends req, retrying only on 429. A 404 yields ErrNotFound; other non-2xx
// statuses yield *HTTPError; exhausted retries yield ErrThrottled.
func (c *Caller) Do(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	var (
		resp *Response
		err  error
	)
	if c.breaker != nil {
		var out interface{}
		out, err = c.breaker.Execute(func() (interface{}, error) {
			r, err := c.doWithRetry(ctx, req)
			if err != nil && ctx.Err() != nil {
				return nil, &abandonedError{err: err}
			}
			return r, err
		})
		var abandoned *abandonedError
		if errors.As(err, &abandoned) {
			err = abandoned.err
		}
		if r, ok := out.(*Response); ok {
			resp = r
		}
	} else {
		resp, err = c.doWithRetry(ctx, req)
	}

	c.metrics.ObserveUpstream(c.name, outcomeLabel(err), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Caller) doWithRetry(ctx context.Context, req Request) (*Response, error) {
	backoff := NewBackoff(c.backoffBase)

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		resp, err := c.doOnce(ctx, req)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			c.metrics.IncThrottled(c.name)
			if attempt == c.maxAttempts-1 {
				continue
			}
			delay := backoff.Next()
			c.logger.WithFields(logrus.Fields{
				"source":  c.name,
				"attempt": attempt + 1,
				"of":      c.maxAttempts,
				"backoff": delay,
			}).Warn("rate limited, backing off")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound

		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return nil, &HTTPError{StatusCode: resp.StatusCode, Body: resp.Body}
		}

		return resp, nil
	}

	c.logger.WithFields(logrus.Fields{
		"source":   c.name,
		"attempts": c.maxAttempts,
		"url":      redactURL(req.URL),
	}).Error("rate limited on every attempt")
	return nil, ErrThrottled
}

func (c *Caller) doOnce(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{StatusCode: res.StatusCode, Body: data}, nil
}

// abandonedError marks a call whose context ended first.
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }
func (e *abandonedError) Unwrap() error { return e.err }

// healthyOutcome decides what the breaker counts as a failure: transport
// errors and gateway statuses only. Abandoned calls, 404, per-resource errors
// and exhausted 429 retries leave the breaker alone.
func healthyOutcome(err error) bool {
	var (
		abandoned *abandonedError
		httpErr   *HTTPError
	)
	switch {
	case err == nil:
		return true
	case errors.As(err, &abandoned):
		return true
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrThrottled):
		return true
	case errors.As(err, &httpErr):
		return !gatewayStatus(httpErr.StatusCode)
	default:
		return false
	}
}

func gatewayStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// IsRejected reports whether err came from an open breaker rather than from
// the upstream. Such results must not be cached.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func outcomeLabel(err error) string {
	var httpErr *HTTPError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrThrottled):
		return "throttled"
	case IsRejected(err):
		return "breaker_open"
	case errors.As(err, &httpErr):
		return "http_error"
	default:
		return "transport_error"
	}
}

// redactURL drops the query string, which may carry an API key.
func redactURL(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}
