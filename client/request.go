// Package client implements the request executor and client context
// (spec.md §4.6, §4.7): the orchestration loop that builds a wire request,
// drives it through the interceptor shim, validates the response, and
// retries per strategy, plus the shared client configuration the
// orchestration loop reads from.
//
// Grounded on the teacher's internal/filterapi/runtime.go construction
// style (plain Config struct turned into a runtime value by a
// constructor) and internal/extproc/processor_impl.go's per-request
// orchestration loop shape (header mutation → body → delegate
// notifications).
package client

import (
	"net/url"
	"sync/atomic"
	"time"

	"github.com/realhttp-go/rhttp/body"
	"github.com/realhttp-go/rhttp/header"
	"github.com/realhttp-go/rhttp/loader"
	"github.com/realhttp-go/rhttp/uritemplate"
)

// RedirectPolicy controls how the loader's Fetch handles 3xx responses
// (spec.md §3). It is the same type loader.FetchOptions.RedirectPolicy
// takes, so a Request's policy threads straight through dispatch.
type RedirectPolicy = loader.RedirectPolicy

const (
	RedirectFollow                     = loader.RedirectFollow
	RedirectRefuse                     = loader.RedirectRefuse
	RedirectFollowWithOriginalSettings = loader.RedirectFollowWithOriginalSettings
)

// requestSeq is the monotonic counter backing Request.ID — a stable
// numeric identifier standing in for the mutable weak back-reference
// spec.md §9 describes (Go has no ARC weak-reference primitive; a
// lookup-by-ID is the idiomatic substitute).
var requestSeq atomic.Uint64

// Request is the structured request description the executor consumes
// (spec.md §3).
type Request struct {
	// ID uniquely identifies this Request for the lifetime of the process;
	// Response.RequestID holds the matching value.
	ID uint64

	Method string

	// Exactly one of AbsoluteURL or (Path, URITemplateVars) is populated;
	// the executor resolves AbsoluteURL first if set.
	AbsoluteURL      string
	Path             string
	URITemplateVars  map[string]string
	Query            []QueryParam

	Header *header.Store
	Body   body.Body

	Timeout      time.Duration
	MaxRetries   uint
	TransferMode loader.TransferMode
	Redirect     RedirectPolicy

	ResumableBytes []byte

	// Mutator, if set, is applied last to the fully composed wire request
	// (spec.md §4.6 step 2: "apply the user-supplied URL-request mutator
	// last").
	Mutator func(req *WireRequest) *WireRequest

	retriesUsed uint
}

// QueryParam is one ordered query-string entry (spec.md §3: "query
// parameter sequence preserving order").
type QueryParam struct {
	Key   string
	Value string
}

// NewRequest builds a Request with a fresh ID and a Header store seeded
// with no defaults (the executor merges in the client's default headers).
func NewRequest(method string) *Request {
	return &Request{ID: requestSeq.Add(1), Method: method, Header: header.New()}
}

// ResolveURL computes the absolute URL this Request targets, given a
// client base URL, in the order spec.md §4.6 describes: AbsoluteURL wins
// if set; otherwise base+Path is expanded against URITemplateVars, then
// Query is appended.
func (r *Request) ResolveURL(baseURL string) (*url.URL, error) {
	raw := r.AbsoluteURL
	if raw == "" {
		raw = baseURL + uritemplate.Expand(r.Path, r.URITemplateVars)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if len(r.Query) > 0 {
		q := u.Query()
		for _, p := range r.Query {
			q.Add(p.Key, p.Value)
		}
		u.RawQuery = encodeOrderedQuery(r.Query, q)
	}
	return u, nil
}

// encodeOrderedQuery renders Query in its given order rather than
// url.Values' sorted-by-key order, preserving the "query parameter
// sequence preserving order" invariant from spec.md §3. existing carries
// the query parameters already present on the resolved URL plus Query's;
// keys of existing that params does not name are written first, in map
// order, and for keys params names only params' values are written.
func encodeOrderedQuery(params []QueryParam, existing url.Values) string {
	var buf []byte
	appended := make(map[string]bool, len(params))
	write := func(k, v string) {
		if len(buf) > 0 {
			buf = append(buf, '&')
		}
		buf = append(buf, []byte(url.QueryEscape(k)+"="+url.QueryEscape(v))...)
	}
	for k, vs := range existing {
		if appended[k] {
			continue
		}
		isOrdered := false
		for _, p := range params {
			if p.Key == k {
				isOrdered = true
				break
			}
		}
		if !isOrdered {
			for _, v := range vs {
				write(k, v)
			}
		}
	}
	for _, p := range params {
		write(p.Key, p.Value)
	}
	return string(buf)
}

// WireRequest is the fully composed request the interceptor shim and
// loader operate on: resolved URL, merged headers, encoded body.
type WireRequest struct {
	Method      string
	URL         *url.URL
	Header      *header.Store
	Body        []byte
	ContentType string
}
