// Package interceptor implements the transport shim that sits between the
// request executor and the real network: when the stub registry is
// enabled and has a match, it synthesizes a response locally; otherwise it
// delegates to the data loader (spec.md §4.3). In opt-out mode a request
// that no rule matches (and no ignore rule covers) is not delegated: Fetch
// fails it instead.
//
// Grounded on other_examples' JailtonJunior94-devkit-go retryTransport for
// the "wrap a base http.RoundTripper, decide per-request, delegate or
// synthesize" shape.
package interceptor

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/realhttp-go/rhttp/loader"
	"github.com/realhttp-go/rhttp/rherr"
	"github.com/realhttp-go/rhttp/stub"
)

// Transport is the interceptor shim (spec.md §4.3).
type Transport struct {
	Registry *stub.Registry
	Loader   *loader.Loader
	CookieJar http.CookieJar

	mu          sync.Mutex
	delayTimers map[string]*time.Timer
}

// New builds a Transport over l, consulting reg for stubbing. If jar is
// nil, a cookiejar.Jar with public-suffix-list eTLD awareness is created —
// the pack has no third-party cookie jar, so this pairs stdlib
// net/http/cookiejar with golang.org/x/net/publicsuffix the way a client
// normally would.
func New(reg *stub.Registry, l *loader.Loader, jar http.CookieJar) *Transport {
	if jar == nil {
		jar, _ = cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	}
	return &Transport{Registry: reg, Loader: l, CookieJar: jar, delayTimers: make(map[string]*time.Timer)}
}

// Fetch either synthesizes a stubbed result or delegates to the Loader,
// per spec.md §4.3's numbered algorithm.
func (t *Transport) Fetch(ctx context.Context, req *http.Request, body []byte, opts loader.FetchOptions) (*loader.Result, error) {
	sreq := toStubRequest(req, body)

	if t.CookieJar != nil {
		t.injectCookies(req)
	}

	if t.Registry == nil || !t.Registry.ShouldHandle(sreq) {
		return t.Loader.Fetch(ctx, req, opts)
	}

	rule := t.Registry.Match(sreq)
	if rule == nil {
		return nil, rherr.New(rherr.CategoryInternal, "matchStubNotFound")
	}
	stubResp, ok := rule.Resolve(sreq)
	if !ok {
		return nil, rherr.New(rherr.CategoryInternal, "matchStubNotFound")
	}

	if stubResp.Delay > 0 {
		return t.deliverDelayed(ctx, req, stubResp, opts)
	}
	return t.deliver(req, stubResp, opts)
}

func (t *Transport) deliverDelayed(ctx context.Context, req *http.Request, stubResp stub.StubResponse, opts loader.FetchOptions) (*loader.Result, error) {
	done := make(chan struct{})
	var result *loader.Result
	var err error

	timer := time.AfterFunc(stubResp.Delay, func() {
		result, err = t.deliver(req, stubResp, opts)
		close(done)
	})
	t.trackTimer(req, timer)
	defer t.untrackTimer(req)

	select {
	case <-ctx.Done():
		timer.Stop()
		return nil, rherr.Wrap(rherr.CategoryCancelled, ctx.Err())
	case <-done:
		return result, err
	}
}

func (t *Transport) deliver(req *http.Request, stubResp stub.StubResponse, opts loader.FetchOptions) (*loader.Result, error) {
	if stubResp.FailureError != nil {
		return &loader.Result{TransportErr: stubResp.FailureError}, nil
	}

	header := http.Header{}
	for k, vs := range stubResp.Header {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	if stubResp.ContentType != "" {
		header.Set("Content-Type", stubResp.ContentType)
	}

	if t.CookieJar != nil && req.URL != nil {
		if setCookies := header.Values("Set-Cookie"); len(setCookies) > 0 {
			resp := &http.Response{Header: header}
			t.CookieJar.SetCookies(req.URL, resp.Cookies())
		}
	}

	if isRedirectStatus(stubResp.StatusCode) && opts.OnRedirect != nil {
		if loc, ok := redirectLocation(header, stubResp.Body); ok {
			opts.OnRedirect(req.URL.String(), loc)
		}
	}

	return &loader.Result{
		StatusCode: stubResp.StatusCode,
		Header:     header,
		Data:       stubResp.Body,
	}, nil
}

func (t *Transport) injectCookies(req *http.Request) {
	for _, c := range t.CookieJar.Cookies(req.URL) {
		req.AddCookie(c)
	}
}

func (t *Transport) trackTimer(req *http.Request, timer *time.Timer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delayTimers[req.URL.String()] = timer
}

func (t *Transport) untrackTimer(req *http.Request) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.delayTimers, req.URL.String())
}

func toStubRequest(req *http.Request, body []byte) *stub.Request {
	return &stub.Request{
		Method: req.Method,
		URL:    req.URL,
		Header: map[string][]string(req.Header),
		Body:   body,
	}
}

// redirectLocation returns a stubbed redirect's target, honoring a
// Location header first and falling back to a body-encoded
// {"location": "..."} field for compatibility (spec.md §9 open question).
func redirectLocation(header http.Header, body []byte) (string, bool) {
	if loc := header.Get("Location"); loc != "" {
		return loc, true
	}
	const marker = `"location"`
	idx := strings.Index(string(body), marker)
	if idx < 0 {
		return "", false
	}
	rest := string(body)[idx+len(marker):]
	start := strings.Index(rest, `"`)
	if start < 0 {
		return "", false
	}
	rest = rest[start+1:]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

func isRedirectStatus(code int) bool {
	return code >= 300 && code < 400 && code != 304 && code != 305
}
