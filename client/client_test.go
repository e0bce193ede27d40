package client_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/realhttp-go/rhttp/body"
	"github.com/realhttp-go/rhttp/client"
	"github.com/realhttp-go/rhttp/internal/rcontext"
	"github.com/realhttp-go/rhttp/rherr"
	"github.com/realhttp-go/rhttp/stub"
)

// TestEmptyResponseFailure is spec.md §8 scenario 3.
func TestEmptyResponseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := client.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.AllowsEmptyResponses = false
	cfg.StubRegistry = stub.New()
	c := client.New(cfg)

	req := client.NewRequest(http.MethodGet)
	req.AbsoluteURL = srv.URL + "/empty"

	_, err := c.Fetch(context.Background(), req)
	require.Error(t, err)
	require.True(t, rherr.Is(err, rherr.CategoryEmptyResponse))
}

// TestExponentialBackoffRetryBudget is spec.md §8 scenario 4 (without
// asserting on wall-clock gaps, to keep the test fast and deterministic).
func TestExponentialBackoffRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unavailable"))
	}))
	defer srv.Close()

	cfg := client.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.RetryBase = time.Millisecond
	cfg.RetryCap = 5 * time.Millisecond
	cfg.StubRegistry = stub.New()
	c := client.New(cfg)

	req := client.NewRequest(http.MethodGet)
	req.AbsoluteURL = srv.URL + "/flaky"
	req.MaxRetries = 3

	_, err := c.Fetch(context.Background(), req)
	require.Error(t, err)
	require.True(t, rherr.Is(err, rherr.CategoryRetryAttemptsReached))
	require.EqualValues(t, 4, calls.Load())
}

func TestSuccessfulFetchReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := client.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.StubRegistry = stub.New()
	c := client.New(cfg)

	req := client.NewRequest(http.MethodGet)
	req.AbsoluteURL = srv.URL + "/ok"

	resp, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, "ok", string(resp.Data))
}

func TestEchoStubThroughClient(t *testing.T) {
	reg := stub.New()
	reg.Enable()
	reg.Add(stub.NewRule("echo", stub.Echo()).
		RespondFunc("", func(req *stub.Request, _ *stub.StubRule) stub.StubResponse {
			return stub.StubResponse{StatusCode: 200, Body: req.Body}
		}))

	cfg := client.DefaultConfig()
	cfg.StubRegistry = reg
	c := client.New(cfg)

	req := client.NewRequest(http.MethodPost)
	req.AbsoluteURL = "https://api.example.com/echo"
	req.Body = body.Raw{Bytes: []byte(`{"a":1}`), ContentType: "application/json"}

	resp, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.JSONEq(t, `{"a":1}`, string(resp.Data))
}

func TestDebugLoggingRedactsSensitiveHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := client.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.StubRegistry = stub.New()
	cfg.DebugLogging = true
	c := client.New(cfg)

	req := client.NewRequest(http.MethodGet)
	req.AbsoluteURL = srv.URL + "/ok"
	req.Header.Set("Authorization", "Bearer super-secret-token")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := rcontext.WithLogger(context.Background(), logger)

	_, err := c.Fetch(ctx, req)
	require.NoError(t, err)

	out := buf.String()
	require.NotContains(t, out, "super-secret-token")
	require.Contains(t, out, "REDACTED")
}
