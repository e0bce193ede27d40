package rhttpauth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/realhttp-go/rhttp/rhttpauth"
)

func TestApplyHeaderSetsAuthorization(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/widgets", nil)
	require.NoError(t, err)

	rhttpauth.ApplyHeader(req, "Bearer abc123")
	require.Equal(t, "Bearer abc123", req.Header.Get("Authorization"))
}
