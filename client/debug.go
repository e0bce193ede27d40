package client

import (
	"context"
	"log/slog"

	"github.com/realhttp-go/rhttp/curl"
	"github.com/realhttp-go/rhttp/internal/rcontext"
)

// logRequest emits a debug-level curl -v rendering of wire plus a
// structured header dump, both with sensitive headers redacted, through
// the slog.Logger carried in ctx (internal/rcontext). Adapted from the
// teacher's internal/redaction/redaction.go hash-and-length placeholder,
// applied here to the request executor's own debug path rather than
// upstream LLM payload logging.
func logRequest(ctx context.Context, wire *WireRequest) {
	logger := rcontext.Logger(ctx)

	rendered := curl.Render(wire.Method, wire.URL.String(), wire.Header, wire.Body, "", curl.Options{Redact: isSensitiveHeader})

	var headerAttrs []any
	wire.Header.Range(func(name, value string) bool {
		if isSensitiveHeader(name) {
			value = redactString(value)
		}
		headerAttrs = append(headerAttrs, slog.String(name, value))
		return true
	})

	logger.Debug("dispatching request",
		slog.String("method", wire.Method),
		slog.String("url", wire.URL.String()),
		slog.String("curl", rendered),
		slog.Group("headers", headerAttrs...),
	)
}
