package client

import (
	"github.com/realhttp-go/rhttp/loader"
	"github.com/realhttp-go/rhttp/retry"
)

// Delegate receives lifecycle callbacks for a Client's requests, in the
// order spec.md §5 specifies: DidEnqueue → TaskIsWaitingForConnectivity? →
// (WillPerformRedirect | DidReceiveAuthChallenge)* → WillRetryWithStrategy?
// → DidCollectedMetrics → DidFinish. Every method has a no-op default via
// NopDelegate, so callers only override what they need.
type Delegate interface {
	DidEnqueue(req *Request)
	TaskIsWaitingForConnectivity(req *Request)
	WillPerformRedirect(req *Request, newURL string)
	DidReceiveAuthChallenge(req *Request, statusCode int)
	WillRetryWithStrategy(req *Request, strategy retry.Strategy, priorResponse *Response)
	DidCollectedMetrics(req *Request, metrics loader.Metrics)
	DidFinish(req *Request, resp *Response, err error)
}

// NopDelegate implements Delegate with no-op methods; embed it to satisfy
// the interface while overriding only the callbacks of interest.
type NopDelegate struct{}

func (NopDelegate) DidEnqueue(*Request)                                             {}
func (NopDelegate) TaskIsWaitingForConnectivity(*Request)                           {}
func (NopDelegate) WillPerformRedirect(*Request, string)                           {}
func (NopDelegate) DidReceiveAuthChallenge(*Request, int)                           {}
func (NopDelegate) WillRetryWithStrategy(*Request, retry.Strategy, *Response) {}
func (NopDelegate) DidCollectedMetrics(*Request, loader.Metrics)                    {}
func (NopDelegate) DidFinish(*Request, *Response, error)                           {}

var _ Delegate = NopDelegate{}
