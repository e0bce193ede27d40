package loader

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// RedirectPolicy controls how Fetch's internal redirect loop handles 3xx
// responses (spec.md §3).
type RedirectPolicy int

const (
	// RedirectFollow follows redirects using the standard collapse rules a
	// browser or net/http's own CheckRedirect applies: 303, or 301/302 on a
	// POST, downgrades to a bodyless GET; 307/308 preserve method and body.
	// Authorization/Cookie headers are dropped when a hop crosses hosts.
	RedirectFollow RedirectPolicy = iota
	// RedirectRefuse delivers the 3xx response as-is, without following it.
	RedirectRefuse
	// RedirectFollowWithOriginalSettings re-issues the original request's
	// method, headers, and body at every hop regardless of status code.
	RedirectFollowWithOriginalSettings
)

// maxRedirects bounds the hop count the same way net/http's own transport
// does, so a redirect loop can't spin forever.
const maxRedirects = 10

func isRedirectStatus(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// redirectLocation resolves resp's Location header against base.
func redirectLocation(resp *http.Response, base *url.URL) (*url.URL, bool) {
	loc := resp.Header.Get("Location")
	if loc == "" {
		return nil, false
	}
	u, err := base.Parse(loc)
	if err != nil {
		return nil, false
	}
	return u, true
}

// nextRedirectRequest builds the request for one redirect hop. original is
// the very first request issued (its GetBody reconstructs the original
// body); previous is the request that produced resp.
func nextRedirectRequest(ctx context.Context, original, previous *http.Request, resp *http.Response, target *url.URL, policy RedirectPolicy) (*http.Request, error) {
	if policy == RedirectFollowWithOriginalSettings {
		body, err := reconstructBody(original.GetBody)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, original.Method, target.String(), body)
		if err != nil {
			return nil, err
		}
		req.Header = original.Header.Clone()
		req.ContentLength = original.ContentLength
		req.GetBody = original.GetBody
		return req, nil
	}

	method := previous.Method
	getBody := previous.GetBody
	switch {
	case resp.StatusCode == http.StatusSeeOther && method != http.MethodHead:
		method, getBody = http.MethodGet, nil
	case (resp.StatusCode == http.StatusMovedPermanently || resp.StatusCode == http.StatusFound) && method == http.MethodPost:
		method, getBody = http.MethodGet, nil
	}

	body, err := reconstructBody(getBody)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header = headersForRedirectHop(previous.Header, previous.URL, target)
	if getBody != nil {
		req.ContentLength = previous.ContentLength
		req.GetBody = getBody
	}
	return req, nil
}

func reconstructBody(getBody func() (io.ReadCloser, error)) (io.ReadCloser, error) {
	if getBody == nil {
		return nil, nil
	}
	return getBody()
}

// headersForRedirectHop clones header, stripping Authorization/Cookie/
// Cookie2/WWW-Authenticate whenever the hop crosses to a different host —
// the same cross-origin stripping net/http's own redirect loop applies.
func headersForRedirectHop(header http.Header, from, to *url.URL) http.Header {
	clone := header.Clone()
	if from != nil && to != nil && from.Hostname() != to.Hostname() {
		for _, sensitive := range []string{"Authorization", "Cookie", "Cookie2", "Www-Authenticate"} {
			clone.Del(sensitive)
		}
	}
	return clone
}

func stageName(hop int) string {
	if hop == 0 {
		return "request"
	}
	return "redirect-" + strconv.Itoa(hop)
}
