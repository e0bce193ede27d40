package body

import (
	"io"
	"net/url"
	"strings"
)

// FormURLEncoded is a sequence of percent-encoded key/value pairs, encoded
// as application/x-www-form-urlencoded (spec.md §6). Order is preserved in
// the wire bytes, matching Values' insertion order.
type FormURLEncoded struct {
	Values []KeyValue
}

// KeyValue is one form field; a plain map loses duplicate-key ordering,
// which the form-encoding round-trip property (spec.md §8) doesn't require
// but callers composing repeated fields (e.g. array-style params) do.
type KeyValue struct {
	Key   string
	Value string
}

// Encode implements Body.
func (f FormURLEncoded) Encode() (io.Reader, string, int64, error) {
	var b strings.Builder
	for i, kv := range f.Values {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	encoded := b.String()
	return strings.NewReader(encoded), "application/x-www-form-urlencoded", int64(len(encoded)), nil
}
