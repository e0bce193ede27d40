package client

import (
	"net/http"

	"github.com/realhttp-go/rhttp/loader"
)

// Response is the outcome of executing a Request (spec.md §3).
type Response struct {
	StatusCode int
	Header     http.Header

	// Exactly one of Data or FilePath is populated, depending on the
	// originating Request's TransferMode.
	Data     []byte
	FilePath string

	TransportErr error
	Metrics      loader.Metrics

	OriginalRequest *WireRequest
	CurrentRequest  *WireRequest

	RetryCount uint

	// RequestID mirrors the originating Request.ID — the stable numeric
	// substitute for a weak back-reference (see client/request.go).
	RequestID uint64
}

// fromLoaderResult builds a Response from one loader.Result, threading
// through the originating/current wire requests and retry count so far.
func fromLoaderResult(result *loader.Result, original, current *WireRequest, retryCount uint, requestID uint64) *Response {
	return &Response{
		StatusCode:      result.StatusCode,
		Header:          result.Header,
		Data:            result.Data,
		FilePath:        result.FilePath,
		TransportErr:    result.TransportErr,
		Metrics:         result.Metrics,
		OriginalRequest: original,
		CurrentRequest:  current,
		RetryCount:      retryCount,
		RequestID:       requestID,
	}
}
