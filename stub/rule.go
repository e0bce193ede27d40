package stub

import "time"

// StubResponse is a synthesized response: either a concrete success body or
// a synthetic failure, per spec.md §3 ("StubResponse has status,
// content-type, headers, body bytes or stream, optional synthetic failure
// error, optional response delay, cache policy").
type StubResponse struct {
	StatusCode  int
	ContentType string
	Header      map[string][]string
	Body        []byte

	// FailureError, when non-nil, tells the interceptor to finalize the
	// request as a synthetic transport failure instead of delivering
	// StatusCode/Body.
	FailureError error

	// Delay, when positive, postpones delivery on a background timer that
	// the interceptor cancels if the request itself is cancelled first.
	Delay time.Duration

	// NoStore marks the response as ineligible for any response cache the
	// caller layers on top of this client.
	NoStore bool
}

// ResponseProducer computes a StubResponse dynamically from the matched
// request and rule, for stubs whose body depends on what was sent.
type ResponseProducer func(req *Request, rule *StubRule) StubResponse

// responseEntry is a method-keyed response: exactly one of Static or
// Producer is set.
type responseEntry struct {
	Static   *StubResponse
	Producer ResponseProducer
}

// StubRule pairs an ordered, AND-combined set of Matchers with a table of
// per-method responses (spec.md §3).
type StubRule struct {
	Name      string
	Matchers  []Matcher
	responses map[string]responseEntry
}

// IgnoreRule is matchers only: a request that matches one always passes
// through to the real transport, even when the registry would otherwise
// report optout-mode unhandled requests as errors (spec.md §4.2).
type IgnoreRule struct {
	Name     string
	Matchers []Matcher
}

// NewRule builds a StubRule from matchers, all of which must match
// (spec.md §3: "matches a Request only if every matcher in its rule
// returns true").
func NewRule(name string, matchers ...Matcher) *StubRule {
	return &StubRule{Name: name, Matchers: matchers, responses: make(map[string]responseEntry)}
}

// NewIgnoreRule builds an IgnoreRule from matchers.
func NewIgnoreRule(name string, matchers ...Matcher) *IgnoreRule {
	return &IgnoreRule{Name: name, Matchers: matchers}
}

// Respond binds a static StubResponse to method. An empty method ("")
// matches any method not given its own entry.
func (r *StubRule) Respond(method string, resp StubResponse) *StubRule {
	r.responses[method] = responseEntry{Static: &resp}
	return r
}

// RespondFunc binds a ResponseProducer to method, invoked at match time
// with the matched request and this rule (spec.md §3).
func (r *StubRule) RespondFunc(method string, fn ResponseProducer) *StubRule {
	r.responses[method] = responseEntry{Producer: fn}
	return r
}

// matches reports whether every matcher in r accepts req.
func (r *StubRule) matches(req *Request) bool {
	for _, m := range r.Matchers {
		if !m(req) {
			return false
		}
	}
	return true
}

// matches reports whether every matcher in i accepts req.
func (i *IgnoreRule) matches(req *Request) bool {
	for _, m := range i.Matchers {
		if !m(req) {
			return false
		}
	}
	return true
}

// Resolve picks the response entry for req.Method, falling back to the
// wildcard ("") entry, and returns the concrete StubResponse — invoking a
// bound ResponseProducer if that's what was registered (spec.md §4.2 step
// 2-3: "From rule.responses, pick by method; if a ResponseProducer is
// bound, invoke it").
func (r *StubRule) Resolve(req *Request) (StubResponse, bool) {
	entry, ok := r.responses[req.Method]
	if !ok {
		entry, ok = r.responses[""]
	}
	if !ok {
		return StubResponse{}, false
	}
	if entry.Producer != nil {
		return entry.Producer(req, r), true
	}
	return *entry.Static, true
}
