package body

import (
	"bytes"
	"io"

	"github.com/realhttp-go/rhttp/internal/json"
	"github.com/realhttp-go/rhttp/rherr"
)

// JSON encodes Value through the shared sonic-backed encoder (see
// internal/json, adapted from the teacher's internal/json package).
type JSON struct {
	Value any
}

// Encode implements Body.
func (j JSON) Encode() (io.Reader, string, int64, error) {
	encoded, err := json.Marshal(j.Value)
	if err != nil {
		return nil, "", 0, rherr.Wrap(rherr.CategoryJSONEncodingFailed, err)
	}
	return bytes.NewReader(encoded), "application/json", int64(len(encoded)), nil
}
