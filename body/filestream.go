package body

import (
	"io"
	"os"

	"github.com/realhttp-go/rhttp/rherr"
)

// FileStream is a byte stream sourced from a file path, with an explicit
// content type. Encode reopens the file each call so the body can be
// re-sent across retries.
type FileStream struct {
	Path        string
	ContentType string
}

// Encode implements Body. The returned reader also implements io.Closer;
// callers that read Body.Encode's result to completion via io.Copy never
// need to close it themselves (io.Copy doesn't, so the executor does).
func (f FileStream) Encode() (io.Reader, string, int64, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, "", 0, rherr.Wrap(rherr.CategoryMultipartInvalidFile, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, "", 0, rherr.Wrap(rherr.CategoryMultipartInvalidFile, err)
	}
	return file, f.ContentType, info.Size(), nil
}
