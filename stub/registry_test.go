package stub_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/realhttp-go/rhttp/stub"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestRegistryMatchFirstRuleWins(t *testing.T) {
	reg := stub.New()
	reg.Enable()

	first := stub.NewRule("any", stub.Echo()).
		Respond("GET", stub.StubResponse{StatusCode: 200, Body: []byte("first")})
	second := stub.NewRule("also-any", stub.Echo()).
		Respond("GET", stub.StubResponse{StatusCode: 200, Body: []byte("second")})
	reg.Add(first)
	reg.Add(second)

	req := &stub.Request{Method: "GET", URL: mustURL(t, "https://api.example.com/anything")}

	matched := reg.Match(req)
	require.Same(t, first, matched)

	resp, ok := matched.Resolve(req)
	require.True(t, ok)
	require.Equal(t, []byte("first"), resp.Body)
}

func TestRegistryEchoScenario(t *testing.T) {
	reg := stub.New()
	reg.Enable()

	rule := stub.NewRule("echo", stub.Echo()).
		RespondFunc("", func(req *stub.Request, _ *stub.StubRule) stub.StubResponse {
			return stub.StubResponse{StatusCode: 200, Body: req.Body}
		})
	reg.Add(rule)

	req := &stub.Request{Method: "POST", URL: mustURL(t, "https://api.example.com/echo"), Body: []byte("ping")}
	require.True(t, reg.ShouldHandle(req))

	matched := reg.Match(req)
	require.NotNil(t, matched)
	resp, ok := matched.Resolve(req)
	require.True(t, ok)
	require.Equal(t, []byte("ping"), resp.Body)
}

// TestRegistryOptinPassthrough is spec.md §8 scenario 6: registry enabled
// with unhandledMode=optin and no matching rule must let the request pass
// through rather than synthesizing matchStubNotFound.
func TestRegistryOptinPassthrough(t *testing.T) {
	reg := stub.New()
	reg.Enable()
	reg.SetUnhandledMode(stub.Optin)

	req := &stub.Request{Method: "GET", URL: mustURL(t, "http://real/unrouted")}
	require.False(t, reg.ShouldHandle(req))
	require.Nil(t, reg.Match(req))
}

func TestRegistryOptoutUnhandledIsHandled(t *testing.T) {
	reg := stub.New()
	reg.Enable()
	reg.SetUnhandledMode(stub.Optout)

	req := &stub.Request{Method: "GET", URL: mustURL(t, "http://real/unrouted")}
	require.True(t, reg.ShouldHandle(req))
	require.Nil(t, reg.Match(req))
}

func TestRegistryIgnoreRuleAlwaysPassesThrough(t *testing.T) {
	reg := stub.New()
	reg.Enable()
	reg.SetUnhandledMode(stub.Optout)
	reg.AddIgnore(stub.NewIgnoreRule("health checks", stub.URLRegex(`.*/healthz$`)))

	req := &stub.Request{Method: "GET", URL: mustURL(t, "http://real/healthz")}
	require.False(t, reg.ShouldHandle(req))
}

func TestRegistryDisabledNeverHandles(t *testing.T) {
	reg := stub.New()
	reg.Add(stub.NewRule("any", stub.Echo()).Respond("GET", stub.StubResponse{StatusCode: 200}))

	req := &stub.Request{Method: "GET", URL: mustURL(t, "https://api.example.com/x")}
	require.False(t, reg.ShouldHandle(req))
}

func TestRegistryRemoveAndRemoveAll(t *testing.T) {
	reg := stub.New()
	reg.Enable()
	rule := stub.NewRule("r1", stub.Echo())
	reg.Add(rule)
	reg.Remove(rule)
	require.Nil(t, reg.Match(&stub.Request{Method: "GET", URL: mustURL(t, "https://x/y")}))

	reg.Add(stub.NewRule("r2", stub.Echo()))
	reg.AddIgnore(stub.NewIgnoreRule("i1", stub.Echo()))
	reg.RemoveAll()
	// With the ignore rule gone, an enabled Optout registry handles the
	// unmatched request itself (see TestRegistryOptoutUnhandledIsHandled).
	require.True(t, reg.ShouldHandle(&stub.Request{Method: "GET", URL: mustURL(t, "https://x/y")}))
	require.Nil(t, reg.Match(&stub.Request{Method: "GET", URL: mustURL(t, "https://x/y")}))
}
