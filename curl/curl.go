// Package curl renders a request as a "curl -v" command line, per
// spec.md §6: -X <METHOD>, one -H "<name>: <value>" per header in store
// order, the body as --data or --data-binary @<path>, then the resolved
// URL, with line continuations joined by \\\n\t.
package curl

import (
	"fmt"
	"strings"

	"github.com/realhttp-go/rhttp/header"
)

// Options configures Render's output.
type Options struct {
	// Redact replaces the value of any header for which it returns true
	// with a placeholder, instead of the real value.
	Redact func(headerName string) bool

	// RedactPlaceholder is used in place of a redacted header's value.
	// Defaults to "[REDACTED]" if empty.
	RedactPlaceholder string
}

// Render builds the "curl -v" command line for one request.
func Render(method, url string, headers *header.Store, bodyBytes []byte, bodyFilePath string, opts Options) string {
	placeholder := opts.RedactPlaceholder
	if placeholder == "" {
		placeholder = "[REDACTED]"
	}

	var lines []string
	lines = append(lines, "curl -v")
	lines = append(lines, fmt.Sprintf("-X %s", method))

	if headers != nil {
		headers.Range(func(name, value string) bool {
			if opts.Redact != nil && opts.Redact(name) {
				value = placeholder
			}
			lines = append(lines, fmt.Sprintf("-H %s", quote(fmt.Sprintf("%s: %s", name, value))))
			return true
		})
	}

	switch {
	case bodyFilePath != "":
		lines = append(lines, fmt.Sprintf("--data-binary @%s", bodyFilePath))
	case len(bodyBytes) > 0:
		lines = append(lines, fmt.Sprintf("--data %s", quote(string(bodyBytes))))
	}

	lines = append(lines, quote(url))

	return strings.Join(lines, " \\\n\t")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
