package validator

import (
	"context"
	"time"

	"github.com/realhttp-go/rhttp/retry"
)

// AltRequestFunc derives the alt request to run from the original request
// and the response that triggered it (spec.md §4.5).
type AltRequestFunc func(req *Request, resp *Response) (altReq any, err error)

// OnAltResponseFunc mutates the original request using the alt response —
// typically setting an authorization header (spec.md §4.5). It receives
// the opaque alt-response value the caller's AltRequestConfig.RunAlt produced.
type OnAltResponseFunc func(req *Request, altResp any)

// AltRequestConfig parameterizes the alt-request validator.
type AltRequestConfig struct {
	// TriggerStatuses is the set of status codes that invoke the alt
	// request; noStatus may be included to cover transport failures.
	TriggerStatuses map[int]bool
	Delay           time.Duration
	DeriveAltRequest AltRequestFunc
	RunAlt          func(ctx context.Context, altReq any) (altResp any, err error)
	OnAltResponse   OnAltResponseFunc
}

// DefaultAltRequestTriggers is {401, 403} per spec.md §4.5.
func DefaultAltRequestTriggers() map[int]bool {
	return map[int]bool{401: true, 403: true}
}

// AltRequest builds the alt-request validator: on a trigger status, it
// returns retry(after(altRequest, delay, onAltResponse)) so the executor
// runs the alt request outside the outer retry budget, then retries the
// original after delay (spec.md §4.5, §4.6).
func AltRequest(cfg AltRequestConfig) Validator {
	return func(resp *Response, req *Request) Outcome {
		code := resp.StatusCode
		if resp.TransportErr != nil {
			code = noStatus
		}
		if !cfg.TriggerStatuses[code] {
			return Next()
		}

		runAlt := func(ctx context.Context) error {
			altReq, err := cfg.DeriveAltRequest(req, resp)
			if err != nil {
				return err
			}
			altResp, err := cfg.RunAlt(ctx, altReq)
			if err != nil {
				return err
			}
			if cfg.OnAltResponse != nil {
				cfg.OnAltResponse(req, altResp)
			}
			return nil
		}

		return Retry(retry.After(runAlt, cfg.Delay, nil))
	}
}
