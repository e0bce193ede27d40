package stub_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/realhttp-go/rhttp/stub"
)

func TestCELMatchesOnMethodAndHeader(t *testing.T) {
	m := stub.CEL(`request.method == "POST" && request.header["x-env"][0] == "staging"`)

	u, err := url.Parse("https://api.example.com/widgets")
	require.NoError(t, err)

	match := &stub.Request{Method: "POST", URL: u, Header: map[string][]string{"X-Env": {"staging"}}}
	require.True(t, m(match))

	noMatch := &stub.Request{Method: "GET", URL: u, Header: map[string][]string{"X-Env": {"staging"}}}
	require.False(t, m(noMatch))
}

func TestCELMatchesOnJSONBody(t *testing.T) {
	m := stub.CEL(`request.body.kind == "widget"`)

	u, err := url.Parse("https://api.example.com/widgets")
	require.NoError(t, err)

	req := &stub.Request{Method: "POST", URL: u, Body: []byte(`{"kind":"widget"}`)}
	require.True(t, m(req))

	other := &stub.Request{Method: "POST", URL: u, Body: []byte(`{"kind":"gadget"}`)}
	require.False(t, m(other))
}

func TestCELInvalidExpressionNeverMatches(t *testing.T) {
	m := stub.CEL(`this is not valid CEL`)
	require.False(t, m(&stub.Request{Method: "GET"}))
}
