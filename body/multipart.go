package body

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"github.com/realhttp-go/rhttp/rherr"
)

// PartKind tags which of string, file path, or stream a Part carries.
type PartKind int

const (
	// PartString is an inline string value.
	PartString PartKind = iota
	// PartFile is a path to a file on disk, read at encode time.
	PartFile
	// PartStream is an already-open reader, consumed at encode time.
	PartStream
)

// Part is one ordered entry of a Multipart body (spec.md §3).
type Part struct {
	Kind        PartKind
	Name        string
	Filename    string // optional, PartFile/PartStream
	ContentType string // optional

	StringValue  string    // PartString
	FilePath     string    // PartFile
	StreamReader io.Reader // PartStream
}

// Multipart is a multipart/form-data body with an ordered part list and an
// optional explicit boundary (a random hex token is generated otherwise,
// per spec.md §6).
type Multipart struct {
	Boundary string
	Parts    []Part
}

// Encode implements Body, writing every part through the standard library's
// mime/multipart writer — the pack has no third-party multipart encoder,
// so this stays on the standard library (see DESIGN.md's stdlib
// justifications).
func (m Multipart) Encode() (io.Reader, string, int64, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if m.Boundary != "" {
		if err := w.SetBoundary(m.Boundary); err != nil {
			return nil, "", 0, rherr.Wrap(rherr.CategoryMultipartInvalidFile, err)
		}
	}

	for _, p := range m.Parts {
		if err := writePart(w, p); err != nil {
			return nil, "", 0, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", 0, rherr.Wrap(rherr.CategoryMultipartStreamReadFailed, err)
	}

	return &buf, w.FormDataContentType(), int64(buf.Len()), nil
}

func writePart(w *multipart.Writer, p Part) error {
	header := make(map[string][]string)
	disposition := fmt.Sprintf(`form-data; name=%q`, p.Name)
	if p.Filename != "" {
		disposition += fmt.Sprintf(`; filename=%q`, p.Filename)
	}
	header["Content-Disposition"] = []string{disposition}
	if p.ContentType != "" {
		header["Content-Type"] = []string{p.ContentType}
	}

	pw, err := w.CreatePart(header)
	if err != nil {
		return rherr.Wrap(rherr.CategoryMultipartFailedStringEncoder, err)
	}

	switch p.Kind {
	case PartString:
		if _, err := pw.Write([]byte(p.StringValue)); err != nil {
			return rherr.Wrap(rherr.CategoryMultipartFailedStringEncoder, err)
		}
	case PartFile:
		f, err := os.Open(p.FilePath)
		if err != nil {
			return rherr.Wrap(rherr.CategoryMultipartInvalidFile, err)
		}
		defer f.Close()
		if _, err := io.Copy(pw, f); err != nil {
			return rherr.Wrap(rherr.CategoryMultipartStreamReadFailed, err)
		}
	case PartStream:
		if p.StreamReader == nil {
			return rherr.New(rherr.CategoryMultipartStreamReadFailed, "nil stream reader")
		}
		if _, err := io.Copy(pw, p.StreamReader); err != nil {
			return rherr.Wrap(rherr.CategoryMultipartStreamReadFailed, err)
		}
	}
	return nil
}

