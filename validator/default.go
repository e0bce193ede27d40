package validator

import (
	"time"

	"github.com/realhttp-go/rhttp/retry"
	"github.com/realhttp-go/rhttp/rherr"
)

// noStatus is the synthetic status code representing a transport failure
// with no HTTP status at all (spec.md §4.5).
const noStatus = 0

// DefaultConfig parameterizes the default validator (spec.md §4.5).
type DefaultConfig struct {
	AllowsEmptyResponses bool
	RetriableStatusCodes map[int]bool
	RetryBase            time.Duration
	RetryCap             time.Duration
}

// DefaultRetriableStatusCodes is the conventional retriable set: the
// synthetic "no status" transport-failure code plus 429 and the 5xx range
// a client typically treats as transient.
func DefaultRetriableStatusCodes() map[int]bool {
	codes := map[int]bool{noStatus: true, 429: true}
	for s := 500; s <= 599; s++ {
		codes[s] = true
	}
	return codes
}

// Default builds the validator always present unless explicitly removed
// (spec.md §4.5): empty-response rejection, then retry-or-fail on error
// status / transport failure.
func Default(cfg DefaultConfig) Validator {
	nonContentStatuses := map[int]bool{204: true, 205: true, 304: true}
	return func(resp *Response, req *Request) Outcome {
		if resp.TransportErr == nil && !cfg.AllowsEmptyResponses &&
			len(resp.Body) == 0 && !nonContentStatuses[resp.StatusCode] {
			return Fail(rherr.New(rherr.CategoryEmptyResponse, "zero-byte body"))
		}

		isErrorStatus := resp.StatusCode >= 400
		isTransportFailure := resp.TransportErr != nil
		if !isErrorStatus && !isTransportFailure {
			return Next()
		}

		code := resp.StatusCode
		if isTransportFailure {
			code = noStatus
		}
		if cfg.RetriableStatusCodes[code] && req.RetriesUsed < req.MaxRetries {
			return Retry(retry.Exponential(cfg.RetryBase, cfg.RetryCap))
		}

		if isTransportFailure {
			return Fail(rherr.Wrap(rherr.CategoryNetwork, resp.TransportErr))
		}
		if cfg.RetriableStatusCodes[code] {
			return Fail(rherr.New(rherr.CategoryRetryAttemptsReached, "retry budget exhausted"))
		}
		return Fail(rherr.New(rherr.CategoryInvalidResponse, "unretriable error status"))
	}
}
