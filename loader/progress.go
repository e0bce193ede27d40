package loader

import (
	"context"
	"io"

	"github.com/realhttp-go/rhttp/rherr"
)

const progressChunkSize = 32 * 1024

// readAllWithProgress reads body to completion, reporting EventDownload
// progress in progressChunkSize increments (offset by baseline, the bytes
// already accounted for by a prior resumed attempt), and reports
// EventFailed with whatever bytes were read so far if ctx is cancelled
// mid-read. If st is non-nil, it is kept updated with a snapshot of buf
// after every chunk, so a concurrent Cancel(taskID, true) can return it.
func readAllWithProgress(ctx context.Context, body io.Reader, expected int64, sink ProgressSink, baseline int64, st *taskState) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, progressChunkSize)
	for {
		select {
		case <-ctx.Done():
			if st != nil {
				st.snapshotPartial(buf)
			}
			if sink != nil {
				sink(Progress{Event: EventFailed, CurrentLength: baseline + int64(len(buf)), ExpectedLength: expected, PartialData: buf})
			}
			return buf, rherr.Wrap(rherr.CategoryCancelled, ctx.Err())
		default:
		}
		n, err := body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if st != nil {
				st.snapshotPartial(buf)
			}
			if sink != nil {
				sink(Progress{Event: EventDownload, CurrentLength: baseline + int64(len(buf)), ExpectedLength: expected})
			}
		}
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			if st != nil {
				st.snapshotPartial(buf)
			}
			if sink != nil {
				sink(Progress{Event: EventFailed, CurrentLength: baseline + int64(len(buf)), ExpectedLength: expected, PartialData: buf})
			}
			return buf, rherr.Wrap(rherr.CategoryNetwork, err)
		}
	}
}

// copyWithProgress streams body into dst, reporting EventDownload progress
// in the same chunking as readAllWithProgress, for the large-data transfer
// mode that must never materialize the full body in memory.
func copyWithProgress(ctx context.Context, dst io.Writer, body io.Reader, expected int64, sink ProgressSink) (int64, error) {
	chunk := make([]byte, progressChunkSize)
	var total int64
	for {
		select {
		case <-ctx.Done():
			if sink != nil {
				sink(Progress{Event: EventFailed, CurrentLength: total, ExpectedLength: expected})
			}
			return total, rherr.Wrap(rherr.CategoryCancelled, ctx.Err())
		default:
		}
		n, err := body.Read(chunk)
		if n > 0 {
			if _, werr := dst.Write(chunk[:n]); werr != nil {
				return total, rherr.Wrap(rherr.CategoryInternal, werr)
			}
			total += int64(n)
			if sink != nil {
				sink(Progress{Event: EventDownload, CurrentLength: total, ExpectedLength: expected})
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			if sink != nil {
				sink(Progress{Event: EventFailed, CurrentLength: total, ExpectedLength: expected})
			}
			return total, rherr.Wrap(rherr.CategoryNetwork, err)
		}
	}
}
