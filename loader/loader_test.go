package loader_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/goleak"

	"github.com/realhttp-go/rhttp/loader"
	"github.com/realhttp-go/rhttp/rherr"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFetchBufferedReadsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	l := loader.New(http.DefaultTransport, nil, nil)
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	var events []loader.ProgressEvent
	result, err := l.Fetch(context.Background(), req, loader.FetchOptions{
		TransferMode: loader.Buffered,
		ProgressSink: func(p loader.Progress) { events = append(events, p.Event) },
	})
	require.NoError(t, err)
	require.Nil(t, result.TransportErr)
	require.Equal(t, 200, result.StatusCode)
	require.Equal(t, "hello world", string(result.Data))
	require.Contains(t, events, loader.EventDownload)
}

func TestFetchLargeDataSpillsToFile(t *testing.T) {
	payload := make([]byte, 256*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write(payload)
	}))
	defer srv.Close()

	l := loader.New(http.DefaultTransport, nil, nil)
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	result, err := l.Fetch(context.Background(), req, loader.FetchOptions{TransferMode: loader.LargeData})
	require.NoError(t, err)
	require.Nil(t, result.TransportErr)
	require.Empty(t, result.Data)
	require.NotEmpty(t, result.FilePath)

	info, err := os.Stat(result.FilePath)
	require.NoError(t, err)
	require.EqualValues(t, len(payload), info.Size())
	os.Remove(result.FilePath)
}

func TestFetchTransportErrorClassifiedAsNetwork(t *testing.T) {
	l := loader.New(http.DefaultTransport, nil, nil)
	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:1/unreachable", nil)
	require.NoError(t, err)

	result, err := l.Fetch(context.Background(), req, loader.FetchOptions{})
	require.NoError(t, err)
	require.Error(t, result.TransportErr)
	require.True(t, rherr.Is(result.TransportErr, rherr.CategoryNetwork))
}

func TestFetchCancellationSurfacesPromptly(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	l := loader.New(http.DefaultTransport, nil, nil)
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := l.Fetch(ctx, req, loader.FetchOptions{})
	require.NoError(t, err)
	require.Error(t, result.TransportErr)
	require.Less(t, time.Since(start), time.Second)
}

func TestFetchWithTracerProviderStillDeliversResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("traced"))
	}))
	defer srv.Close()

	l := loader.New(http.DefaultTransport, nil, noop.NewTracerProvider())
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	result, err := l.Fetch(context.Background(), req, loader.FetchOptions{TransferMode: loader.Buffered})
	require.NoError(t, err)
	require.Nil(t, result.TransportErr)
	require.Equal(t, "traced", string(result.Data))
}
