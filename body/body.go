// Package body implements the request body variants (spec.md §3): empty,
// raw bytes, a file-backed byte stream, form-url-encoded pairs, JSON, and
// multipart/form-data. Each variant is a Body that encodes itself to
// (reader, content-type, content-length).
package body

import (
	"bytes"
	"io"
)

// Body is the contract the request executor consumes to obtain wire bytes
// for a request. Encode may be called more than once across retries, so
// implementations must be safe to encode repeatedly (file-backed variants
// reopen the file each call).
type Body interface {
	// Encode returns a reader over the body's wire bytes, its content type,
	// and its length if known ahead of time (-1 if not, e.g. an unsized
	// stream).
	Encode() (reader io.Reader, contentType string, contentLength int64, err error)
}

// Empty is the absence of a body.
type Empty struct{}

// Encode implements Body.
func (Empty) Encode() (io.Reader, string, int64, error) { return nil, "", 0, nil }

// Raw is a literal byte buffer with an explicit content type.
type Raw struct {
	Bytes       []byte
	ContentType string
}

// Encode implements Body.
func (r Raw) Encode() (io.Reader, string, int64, error) {
	return bytes.NewReader(r.Bytes), r.ContentType, int64(len(r.Bytes)), nil
}
