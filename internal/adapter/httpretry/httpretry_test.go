package httpretry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackoff() Backoff {
	return Backoff{MaxRetries: 2, Initial: time.Millisecond, Max: 2 * time.Millisecond}
}

func getter(url string) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New("test", srv.Client(), fastBackoff())
	resp, err := c.Do(context.Background(), getter(srv.URL))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New("test", srv.Client(), fastBackoff())
	_, err := c.Do(context.Background(), getter(srv.URL))
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("test", srv.Client(), fastBackoff())
	_, err := c.Do(context.Background(), getter(srv.URL))
	require.ErrorIs(t, err, ErrUnexpected)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_BreakerOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New("test", srv.Client(), Backoff{MaxRetries: 0, Initial: time.Millisecond})
	for range 5 {
		_, err := c.Do(context.Background(), getter(srv.URL))
		require.ErrorIs(t, err, ErrServerError)
	}
	_, err := c.Do(context.Background(), getter(srv.URL))
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, "open", c.State())
}

func TestDo_InvalidBackoff(t *testing.T) {
	c := New("test", nil, Backoff{MaxRetries: 1})
	_, err := c.Do(context.Background(), getter("http://localhost"))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDo_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := New("test", nil, fastBackoff())
	_, err := c.Do(ctx, getter("http://localhost"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestDo_NotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	c := New("test", srv.Client(), fastBackoff())
	_, err := c.Do(context.Background(), getter(srv.URL))
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}
