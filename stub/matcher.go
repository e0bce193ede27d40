package stub

import (
	"net"
	"net/url"
	"reflect"
	"regexp"

	"github.com/tidwall/gjson"

	"github.com/realhttp-go/rhttp/internal/json"
	"github.com/realhttp-go/rhttp/uritemplate"
)

// Matcher is a predicate over a Request, used to select stubs or ignores.
// A StubRule matches a Request only if every one of its Matchers returns
// true (spec.md §3 invariants: "A stub is selected only if every matcher
// in its rule returns true (AND)").
type Matcher func(req *Request) bool

// URLRegex matches when pattern matches req.URL.String(). The pattern is
// not implicitly anchored: a match anywhere in the URL string counts.
func URLRegex(pattern string) Matcher {
	re := regexp.MustCompile(pattern)
	return func(req *Request) bool {
		if req == nil || req.URL == nil {
			return false
		}
		return re.MatchString(req.URL.String())
	}
}

// URITemplate matches when req.URL can be parsed against an RFC 6570
// template; expansion variables in the template absorb any value present
// in the request's URL at that position (spec.md §4.2).
func URITemplate(template string) Matcher {
	return func(req *Request) bool {
		if req == nil || req.URL == nil {
			return false
		}
		_, ok := uritemplate.Match(template, req.URL.String())
		return ok
	}
}

// URLOptions controls which URL components URLWithOptions ignores.
type URLOptions struct {
	IgnoreQueryParameters bool
	IgnorePath            bool
	IgnoreScheme          bool
	IgnoreHost            bool
	IgnorePort            bool
	IgnoreFragment        bool
}

// URLWithOptions matches on exact URL equality after zeroing out the
// components named in opts.
func URLWithOptions(expected string, opts URLOptions) Matcher {
	expectedURL, err := url.Parse(expected)
	return func(req *Request) bool {
		if err != nil || req == nil || req.URL == nil {
			return false
		}
		a := normalizeURL(*req.URL, opts)
		b := normalizeURL(*expectedURL, opts)
		return a == b
	}
}

// normalizeURL returns a comparable string form of u with the components
// named in opts cleared out.
func normalizeURL(u url.URL, opts URLOptions) string {
	if opts.IgnoreQueryParameters {
		u.RawQuery = ""
	}
	if opts.IgnorePath {
		u.Path = ""
		u.RawPath = ""
	}
	if opts.IgnoreScheme {
		u.Scheme = ""
	}
	if opts.IgnorePort {
		u.Host = stripPort(u.Host)
	}
	if opts.IgnoreHost {
		_, port, ok := splitHostPort(u.Host)
		if ok {
			u.Host = ":" + port
		} else {
			u.Host = ""
		}
	}
	if opts.IgnoreFragment {
		u.Fragment = ""
		u.RawFragment = ""
	}
	return u.String()
}

// JSONObject deserializes the request body as JSON and deep-compares it to
// the canonical JSON form of expected.
func JSONObject(expected any) Matcher {
	return func(req *Request) bool {
		if req == nil || len(req.Body) == 0 {
			return false
		}
		var got any
		if err := json.Unmarshal(req.Body, &got); err != nil {
			return false
		}
		wantBytes, err := json.Marshal(expected)
		if err != nil {
			return false
		}
		var want any
		if err := json.Unmarshal(wantBytes, &want); err != nil {
			return false
		}
		return reflect.DeepEqual(got, want)
	}
}

// JSONPath matches when the value at a gjson path within the request body
// equals expected's canonical string form. This complements JSONObject for
// partial-body matches, using gjson for the path extraction.
func JSONPath(path string, expected string) Matcher {
	return func(req *Request) bool {
		if req == nil || len(req.Body) == 0 || !gjson.ValidBytes(req.Body) {
			return false
		}
		return gjson.GetBytes(req.Body, path).String() == expected
	}
}

// Body matches on exact byte equality against expected.
func Body(expected []byte) Matcher {
	return func(req *Request) bool {
		if req == nil {
			return len(expected) == 0
		}
		return string(req.Body) == string(expected)
	}
}

// Custom wraps an arbitrary user predicate as a Matcher.
func Custom(fn func(req *Request) bool) Matcher { return fn }

// Echo always matches; it pairs with a ResponseProducer (see rule.go and
// response.go) that mirrors the request back as the response.
func Echo() Matcher {
	return func(*Request) bool { return true }
}

func stripPort(host string) string {
	h, _, ok := splitHostPort(host)
	if !ok {
		return host
	}
	return h
}

func splitHostPort(host string) (h, port string, ok bool) {
	h, port, err := net.SplitHostPort(host)
	return h, port, err == nil
}
