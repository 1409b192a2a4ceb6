// Package httpretry wraps outbound HTTP calls with bounded retries,
// exponential backoff and a circuit breaker shared per upstream.
package httpretry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/sony/gobreaker"
)

var (
	ErrRateLimited   = errors.New("rate limited")
	ErrServerError   = errors.New("server error")
	ErrNotFound      = errors.New("not found")
	ErrUnexpected    = errors.New("unexpected status code")
	ErrCircuitOpen   = errors.New("circuit breaker open")
	ErrInvalidConfig = errors.New("invalid backoff configuration")
)

// Backoff controls retry timing. Delays double from Initial up to Max.
type Backoff struct {
	MaxRetries int
	Initial    time.Duration
	Max        time.Duration
}

// DefaultBackoff retries twice, starting at 200ms and capping at 5s.
func DefaultBackoff() Backoff {
	return Backoff{MaxRetries: 2, Initial: 200 * time.Millisecond, Max: 5 * time.Second}
}

// Client executes requests against one upstream.
type Client struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	backoff Backoff
}

// New builds a Client named after its upstream. The breaker opens after five
// consecutive failures and probes again after thirty seconds.
func New(name string, httpClient *http.Client, backoff Backoff) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		// A missing resource says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})
	return &Client{http: httpClient, breaker: cb, backoff: backoff}
}

// Do sends the request built by build, retrying rate limits, 5xx responses
// and transport errors. 404 and other non-2xx statuses fail immediately. The caller
// owns the returned body.
func (c *Client) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	if c.backoff.MaxRetries < 0 || c.backoff.Initial <= 0 {
		return nil, ErrInvalidConfig
	}

	delay := c.backoff.Initial
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req, err := build(ctx)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		result, err := c.breaker.Execute(func() (any, error) {
			resp, err := c.http.Do(req)
			if err != nil {
				return nil, err
			}
			if err := statusError(resp.StatusCode); err != nil {
				drain(resp)
				return nil, err
			}
			return resp, nil
		})
		if err == nil {
			return result.(*http.Response), nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		if !retryable(err) || attempt >= c.backoff.MaxRetries {
			return nil, err
		}

		if !sharedretry.SleepWithContext(ctx, delay) {
			return nil, ctx.Err()
		}
		delay = sharedretry.NextBackoff(delay, c.maxDelay())
	}
}

func (c *Client) maxDelay() time.Duration {
	if c.backoff.Max <= 0 {
		return time.Duration(math.MaxInt64)
	}
	return c.backoff.Max
}

// State reports the breaker state, e.g. "closed" or "open".
func (c *Client) State() string {
	return c.breaker.State().String()
}

func statusError(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %d", ErrNotFound, code)
	case code >= 500:
		return fmt.Errorf("%w: %d", ErrServerError, code)
	case code < 200 || code >= 300:
		return fmt.Errorf("%w: %d", ErrUnexpected, code)
	}
	return nil
}

func retryable(err error) bool {
	return !errors.Is(err, ErrUnexpected) && !errors.Is(err, ErrNotFound) &&
		!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
