package client

import (
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/realhttp-go/rhttp/header"
	"github.com/realhttp-go/rhttp/stub"
	"github.com/realhttp-go/rhttp/validator"
)

// Config holds every per-client recognized option (spec.md §6).
type Config struct {
	BaseURL              string
	Timeout              time.Duration
	AllowsCellularAccess  bool
	// Redirect is the client-wide default redirect policy; a Request's own
	// Redirect field overrides it for that single call unless it is
	// RedirectFollow, the zero value, which defers to this default.
	Redirect              RedirectPolicy
	MaxRetries            uint
	AllowsEmptyResponses  bool
	RetriableHTTPStatusCodes map[int]bool
	HTTPShouldSetCookies  bool
	NetworkServiceType    string

	// DebugLogging turns on a debug-level curl rendering and header dump of
	// every dispatched request, through the logger carried in the Fetch
	// context (internal/rcontext), with sensitive headers redacted.
	DebugLogging bool

	DefaultHeaders *header.Store
	Validators     []validator.Validator
	Delegate       Delegate

	Transport    http.RoundTripper
	CookieJar    http.CookieJar
	StubRegistry *stub.Registry

	RetryBase time.Duration
	RetryCap  time.Duration

	// MeterProvider and TracerProvider are optional OTel providers for the
	// loader's byte counters and transaction spans. Nil skips instrumentation.
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// DefaultConfig returns a Config with the library's conventional defaults:
// a 30s timeout, no retries, empty responses disallowed, the default
// retriable status set, and the process-wide stub registry.
func DefaultConfig() Config {
	return Config{
		Timeout:                  30 * time.Second,
		Redirect:                 RedirectFollow,
		MaxRetries:               0,
		AllowsEmptyResponses:     false,
		RetriableHTTPStatusCodes: validator.DefaultRetriableStatusCodes(),
		HTTPShouldSetCookies:     true,
		DefaultHeaders:           header.Default(),
		StubRegistry:             stub.Default(),
		RetryBase:                100 * time.Millisecond,
		RetryCap:                 30 * time.Second,
	}
}

var (
	defaultOnce     sync.Once
	defaultInstance *Client
)

// Default returns the process-wide shared Client instance (spec.md §4.7),
// built lazily from DefaultConfig on first use.
func Default() *Client {
	defaultOnce.Do(func() {
		defaultInstance = New(DefaultConfig())
	})
	return defaultInstance
}
