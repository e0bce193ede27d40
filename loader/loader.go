// Package loader performs the one underlying network transfer a request
// executor drives per attempt (spec.md §4.4): buffered in-memory transfer
// or large-data spill-to-file transfer, progress events, cancellation with
// optional resumable bytes, and per-transaction metrics.
//
// Grounded on other_examples' JailtonJunior94-devkit-go retryTransport for
// context-aware cancellation/timeout handling around an http.RoundTripper,
// and on the teacher's internal/metrics/metrics.go for the OTel
// meter-and-exporter wiring style (env-driven optional instrumentation).
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/realhttp-go/rhttp/rherr"
)

// TransferMode selects buffered in-memory transfer vs spill-to-file large
// data transfer (spec.md §3).
type TransferMode int

const (
	// Buffered accumulates the response body in memory.
	Buffered TransferMode = iota
	// LargeData spills the response body to a temp file, reporting
	// progress, and never materializes bytes unless the caller reads them.
	LargeData
)

// ProgressEvent tags a ProgressSink delivery (spec.md §4.4).
type ProgressEvent int

const (
	// EventUpload reports outbound transfer progress.
	EventUpload ProgressEvent = iota
	// EventDownload reports inbound transfer progress.
	EventDownload
	// EventResumed is the first event delivered after a successful resume.
	EventResumed
	// EventFailed is the final event when a transfer aborts with partial bytes.
	EventFailed
)

// Progress is one update delivered to a ProgressSink.
type Progress struct {
	Event          ProgressEvent
	CurrentLength  int64
	ExpectedLength int64 // -1 if unknown
	PartialData    []byte
}

// ProgressSink receives Progress updates. Implementations must not block
// significantly; the loader does not buffer undelivered events.
type ProgressSink func(Progress)

// TransactionStage names one phase of a single HTTP transaction within a
// fetch, per spec.md §3's metrics record.
type TransactionStage struct {
	Name     string
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// Metrics is the per-fetch metrics record (spec.md §3): total task
// interval, redirect count, and one stage sequence per attempt/redirect hop.
type Metrics struct {
	TaskStart    time.Time
	TaskEnd      time.Time
	RedirectHops int
	Stages       []TransactionStage
}

// Result is what Fetch returns: either in-memory bytes (Buffered mode) or a
// spill-file path (LargeData mode), never both.
type Result struct {
	TaskID      string
	StatusCode  int
	Header      http.Header
	Data        []byte
	FilePath    string
	Metrics     Metrics
	TransportErr error
}

// FetchOptions configures one Fetch call.
type FetchOptions struct {
	TransferMode   TransferMode
	ResumableBytes []byte
	ProgressSink   ProgressSink
	SpillDir       string

	// RedirectPolicy selects how 3xx responses are handled (spec.md §3).
	// The zero value is RedirectFollow.
	RedirectPolicy RedirectPolicy
	// OnRedirect, if set, is invoked with (fromURL, toURL) before each
	// redirect hop is issued.
	OnRedirect func(fromURL, toURL string)
}

// Loader performs transfers through an underlying http.RoundTripper.
type Loader struct {
	RoundTripper http.RoundTripper

	requestBytes  metric.Int64Counter
	responseBytes metric.Int64Counter
	tasks         registry
}

// New builds a Loader over rt. If meterProvider is non-nil, per-transfer
// byte counters are registered against it (env-driven, optional, matching
// the teacher's metrics wiring style); pass nil to skip instrumentation.
// If tracerProvider is non-nil, rt is wrapped with otelhttp so each
// transaction's request stage produces a span.
func New(rt http.RoundTripper, meterProvider metric.MeterProvider, tracerProvider trace.TracerProvider) *Loader {
	l := &Loader{RoundTripper: rt}
	if meterProvider != nil {
		meter := meterProvider.Meter("github.com/realhttp-go/rhttp/loader")
		l.requestBytes, _ = meter.Int64Counter("rhttp.loader.request_bytes")
		l.responseBytes, _ = meter.Int64Counter("rhttp.loader.response_bytes")
	}
	if tracerProvider != nil {
		base := l.RoundTripper
		if base == nil {
			base = http.DefaultTransport
		}
		l.RoundTripper = otelhttp.NewTransport(base, otelhttp.WithTracerProvider(tracerProvider))
	}
	return l
}

// taskState tracks one in-flight fetch for Cancel: cancellation, a delayed
// stub timer when the interceptor owns the fetch, and a running snapshot of
// bytes downloaded so far for resumable cancellation (Buffered mode only).
type taskState struct {
	cancel     context.CancelFunc
	delayTimer *time.Timer

	mu      sync.Mutex
	partial []byte
}

func (st *taskState) snapshotPartial(buf []byte) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if cap(st.partial) < len(buf) {
		st.partial = make([]byte, len(buf))
	} else {
		st.partial = st.partial[:len(buf)]
	}
	copy(st.partial, buf)
}

func (st *taskState) partialSnapshot() []byte {
	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.partial) == 0 {
		return nil
	}
	out := make([]byte, len(st.partial))
	copy(out, st.partial)
	return out
}

// Fetch performs one underlying network transfer, following redirects per
// opts.RedirectPolicy (spec.md §3, §4.3). Fetch blocks until completion or
// ctx's cancellation. The task ID it generates is visible only as
// Result.TaskID once Fetch has returned, and by then the task is no longer
// registered, so Cancel cannot reach a fetch that is still in flight;
// cancelling ctx is what stops one.
func (l *Loader) Fetch(ctx context.Context, req *http.Request, opts FetchOptions) (*Result, error) {
	taskID := uuid.NewString()
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	st := &taskState{cancel: cancel}
	l.tasks.put(taskID, st)
	defer l.tasks.remove(taskID)
	ctx = taskCtx

	metrics := Metrics{TaskStart: time.Now()}

	rt := l.RoundTripper
	if rt == nil {
		rt = http.DefaultTransport
	}

	resuming := opts.TransferMode == Buffered && len(opts.ResumableBytes) > 0
	if resuming {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", len(opts.ResumableBytes)))
	}

	if opts.ProgressSink != nil && req.ContentLength > 0 {
		opts.ProgressSink(Progress{Event: EventUpload, CurrentLength: req.ContentLength, ExpectedLength: req.ContentLength})
	}
	if l.requestBytes != nil {
		l.requestBytes.Add(ctx, req.ContentLength)
	}

	original, current := req, req
	var resp *http.Response
	var err error
	for hop := 0; ; hop++ {
		stageStart := time.Now()
		resp, err = rt.RoundTrip(current.WithContext(ctx))
		metrics.Stages = append(metrics.Stages, TransactionStage{
			Name: stageName(hop), Start: stageStart, End: time.Now(), Duration: time.Since(stageStart),
		})
		if err != nil {
			metrics.TaskEnd = time.Now()
			if opts.ProgressSink != nil {
				opts.ProgressSink(Progress{Event: EventFailed})
			}
			return &Result{TaskID: taskID, Metrics: metrics, TransportErr: classifyTransportErr(ctx, err)}, nil
		}

		if opts.RedirectPolicy == RedirectRefuse || !isRedirectStatus(resp.StatusCode) || hop >= maxRedirects {
			break
		}
		target, ok := redirectLocation(resp, current.URL)
		if !ok {
			break
		}
		resp.Body.Close()
		next, buildErr := nextRedirectRequest(ctx, original, current, resp, target, opts.RedirectPolicy)
		if buildErr != nil {
			break
		}
		metrics.RedirectHops++
		if opts.OnRedirect != nil {
			opts.OnRedirect(current.URL.String(), target.String())
		}
		current = next
	}
	defer resp.Body.Close()

	result := &Result{TaskID: taskID, StatusCode: resp.StatusCode, Header: resp.Header, Metrics: metrics}

	switch opts.TransferMode {
	case LargeData:
		if err := l.spillToFile(ctx, resp.Body, resp.ContentLength, opts, result); err != nil {
			result.TransportErr = err
		}
	default:
		baseline := int64(0)
		successfulResume := resuming && resp.StatusCode == http.StatusPartialContent
		if successfulResume {
			baseline = int64(len(opts.ResumableBytes))
			if opts.ProgressSink != nil {
				opts.ProgressSink(Progress{Event: EventResumed, CurrentLength: baseline})
			}
		}
		if err := l.readBuffered(ctx, resp.Body, resp.ContentLength, opts, result, st, baseline); err != nil {
			result.TransportErr = err
		} else if successfulResume {
			result.Data = append(append([]byte{}, opts.ResumableBytes...), result.Data...)
		}
	}
	result.Metrics.TaskEnd = time.Now()
	return result, nil
}

// readBuffered reads body into result.Data, tracking a running snapshot on
// st so a concurrent Cancel(taskID, true) can return partial bytes.
func (l *Loader) readBuffered(ctx context.Context, body io.Reader, expected int64, opts FetchOptions, result *Result, st *taskState, baseline int64) error {
	data, err := readAllWithProgress(ctx, body, expected, opts.ProgressSink, baseline, st)
	if err != nil {
		return err
	}
	result.Data = data
	if l.responseBytes != nil {
		l.responseBytes.Add(ctx, int64(len(data)))
	}
	return nil
}

// spillToFile streams the large-data transfer straight to disk; resumable
// cancellation is Buffered-only (there's no in-memory snapshot to return for
// a file-backed transfer), so st/baseline aren't threaded through here.
func (l *Loader) spillToFile(ctx context.Context, body io.Reader, expected int64, opts FetchOptions, result *Result) error {
	dir := opts.SpillDir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "rhttp-spill-*")
	if err != nil {
		return rherr.Wrap(rherr.CategoryInternal, err)
	}
	defer f.Close()

	n, err := copyWithProgress(ctx, f, body, expected, opts.ProgressSink)
	if err != nil {
		return err
	}
	if l.responseBytes != nil {
		l.responseBytes.Add(ctx, n)
	}
	result.FilePath = f.Name()
	return nil
}

func classifyTransportErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return rherr.Wrap(rherr.CategoryCancelled, ctx.Err())
	}
	return rherr.Wrap(rherr.CategoryNetwork, err)
}
