package clients

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:     baseURL,
		ServiceName: "remote-quotes",
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     10 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Minute,
			HalfOpenLimit: 1,
		},
	}
}

// statusServer answers each request with the next status in seq, repeating
// the last one, and counts the requests it saw.
func statusServer(t *testing.T, seq ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(hits.Add(1)) - 1
		w.WriteHeader(seq[min(n, len(seq)-1)])
	}))
	t.Cleanup(server.Close)

	return server, &hits
}

func newClient(t *testing.T, cfg *Config) *Client {
	t.Helper()

	client, err := New(cfg)
	require.NoError(t, err)

	return client
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	require.ErrorContains(t, err, "config is required")

	_, err = New(&Config{BaseURL: "http://remote"})
	require.ErrorContains(t, err, "service name is required")

	client := newClient(t, &Config{BaseURL: "http://remote/", ServiceName: "remote-quotes"})
	assert.Equal(t, "http://remote", client.baseURL)
	assert.Equal(t, defaultTimeout, client.cfg.Timeout)
	assert.Equal(t, 1, client.cfg.Retry.MaxAttempts)
	assert.Equal(t, StateClosed, client.CircuitState())
	assert.Equal(t, "http://remote/posts", client.url("posts"))
	assert.Equal(t, "http://remote/posts", client.url("/posts"))
}

func TestClient_PropagatesHeaders(t *testing.T) {
	got := make(chan http.Header, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(server.URL)
	cfg.UserAgent = "quotekeeper/1.2.3"
	client := newClient(t, cfg)

	ctx := middleware.ContextWithRequestID(context.Background(), "req-1")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-1")

	resp, err := client.Get(ctx, "/posts")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	h := <-got
	assert.Equal(t, "req-1", h.Get(middleware.HeaderRequestID))
	assert.Equal(t, "corr-1", h.Get(middleware.HeaderCorrelationID))
	assert.Equal(t, "quotekeeper/1.2.3", h.Get("User-Agent"))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	server, hits := statusServer(t, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusOK)
	client := newClient(t, testConfig(server.URL))

	resp, err := client.Get(context.Background(), "/posts")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_ReturnsClientErrorsWithoutRetry(t *testing.T) {
	server, hits := statusServer(t, http.StatusNotFound)
	client := newClient(t, testConfig(server.URL))

	resp, err := client.Get(context.Background(), "/posts/9")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, StateClosed, client.CircuitState(), "a 4xx is not a remote failure")
}

func TestClient_MaxRetriesExceeded(t *testing.T) {
	server, hits := statusServer(t, http.StatusInternalServerError)
	client := newClient(t, testConfig(server.URL))

	_, err := client.Get(context.Background(), "/posts")

	require.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Contains(t, err.Error(), "server error: 500")
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_PostReplaysBodyOnRetry(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		mu.Lock()
		defer mu.Unlock()

		bodies = append(bodies, string(body))

		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		if len(bodies) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)

	client := newClient(t, testConfig(server.URL))

	resp, err := client.Post(context.Background(), "/posts", strings.NewReader(`{"title":"a"}`))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{`{"title":"a"}`, `{"title":"a"}`}, bodies)
}

func TestClient_StreamedBodyGetsOneAttempt(t *testing.T) {
	server, hits := statusServer(t, http.StatusServiceUnavailable)
	client := newClient(t, testConfig(server.URL))

	pr, pw := io.Pipe()

	go func() {
		_, _ = pw.Write([]byte(`{"title":"streamed"}`))
		_ = pw.Close()
	}()

	_, err := client.Post(context.Background(), "/posts", pr)

	require.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_CircuitOpens(t *testing.T) {
	server, hits := statusServer(t, http.StatusInternalServerError)

	cfg := testConfig(server.URL)
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit.MaxFailures = 2
	client := newClient(t, cfg)

	for range 2 {
		_, err := client.Get(context.Background(), "/posts")
		require.ErrorIs(t, err, ErrMaxRetriesExceeded)
	}

	assert.Equal(t, StateOpen, client.CircuitState())

	_, err := client.Get(context.Background(), "/posts")
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), hits.Load(), "an open circuit never reaches the remote")
}

func TestClient_AttemptTimeoutIsRetried(t *testing.T) {
	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(server.URL)
	cfg.Timeout = 20 * time.Millisecond
	cfg.Retry.MaxAttempts = 2
	client := newClient(t, cfg)

	_, err := client.Get(context.Background(), "/posts")

	require.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	client := newClient(t, testConfig(server.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, "/posts")

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrMaxRetriesExceeded)
}

func TestBackoff(t *testing.T) {
	client := newClient(t, &Config{
		ServiceName: "remote-quotes",
		Retry: config.RetryConfig{
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     time.Second,
			Multiplier:      2.0,
		},
	})

	assert.Equal(t, 200*time.Millisecond, client.backoff(1))
	assert.Equal(t, 400*time.Millisecond, client.backoff(2))
	assert.Equal(t, time.Second, client.backoff(5), "capped")

	client.cfg.Retry.JitterFactor = 0.25

	for range 100 {
		d := client.backoff(1)
		assert.GreaterOrEqual(t, d, 150*time.Millisecond)
		assert.LessOrEqual(t, d, 250*time.Millisecond)
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "timeout", err: timeoutError{}, want: true},
		{name: "connection refused", err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "attempt deadline", err: context.DeadlineExceeded, want: true},
		{name: "other", err: errors.New("bad request line"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}
