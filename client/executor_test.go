package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/realhttp-go/rhttp/client"
	"github.com/realhttp-go/rhttp/retry"
	"github.com/realhttp-go/rhttp/rhttpauth"
	"github.com/realhttp-go/rhttp/validator"
)

// recordingDelegate counts WillRetryWithStrategy calls for the end-to-end
// assertion below; every other callback is the NopDelegate no-op.
type recordingDelegate struct {
	client.NopDelegate
	willRetryCalls atomic.Int32
}

func (d *recordingDelegate) WillRetryWithStrategy(req *client.Request, strategy retry.Strategy, priorResponse *client.Response) {
	d.willRetryCalls.Add(1)
}

// TestSilentLoginRetriesWithRefreshedAuthorization is spec.md §8 scenario 2:
// a 401 triggers an alt request that refreshes the access token, which is
// then installed on the original request before exactly one retry.
func TestSilentLoginRetriesWithRefreshedAuthorization(t *testing.T) {
	var seenAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = append(seenAuth, r.Header.Get("Authorization"))
		if len(seenAuth) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	// current token is already valid, so refresher.Refresh resolves it from
	// the in-memory oauth2.TokenSource without any network call.
	refresher := rhttpauth.NewTokenRefresher(
		&oauth2.Config{},
		&oauth2.Token{AccessToken: "T", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)},
		nil, "",
	)

	delegate := &recordingDelegate{}
	cfg := client.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Delegate = delegate
	cfg.Validators = []validator.Validator{validator.AltRequest(client.OAuthSilentLogin(refresher))}

	req := client.NewRequest(http.MethodGet)
	req.AbsoluteURL = srv.URL + "/protected"
	req.MaxRetries = 1

	resp, err := client.New(cfg).Fetch(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, []string{"", "Bearer T"}, seenAuth)
	require.EqualValues(t, 1, delegate.willRetryCalls.Load())
}
