// Package stub implements the request interceptor's matcher/registry
// subsystem (spec.md §4.2): an ordered table of StubRules keyed by
// matchers, a global registry with enable/disable and opt-in/opt-out
// passthrough, and the matchers themselves (URL regex, URI template,
// URL-with-options, JSON object, body bytes, custom predicate, echo).
//
// The matcher-set-plus-response shape is grounded on the other_examples
// reference TetsujinOni-go-tartuffe's Stub/Predicate model; the
// match-first-rule-wins registry loop is grounded on getmockd-mockd's
// Handler.HasMatch.
package stub

import "net/url"

// Request is the minimal view of an outgoing request the matchers and
// response producers need. Package client builds one of these from its own
// richer Request type before consulting the registry, keeping stub free of
// a dependency on client.
type Request struct {
	Method string
	URL    *url.URL
	Header map[string][]string
	Body   []byte
}

// HeaderValue returns the first value for name (case handling is left to
// the caller; client populates Header with canonical net/http casing).
func (r *Request) HeaderValue(name string) string {
	if r == nil || r.Header == nil {
		return ""
	}
	if vs, ok := r.Header[name]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}
