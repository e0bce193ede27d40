// Package rhttpazure adapts Azure AD bearer-token auth into the
// alt-request validator's silent-reauthorization hook, using azidentity's
// default credential chain to mint tokens and azcore's policy types for
// scope handling.
//
// Grounded on the teacher's internal/extproc/backendauth/azure.go
// ("Authorization: Bearer <token>" header-mutation shape), generalized
// from a static token file to a live azidentity credential.
package rhttpazure

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// TokenSource mints Azure AD bearer tokens for a fixed scope set.
type TokenSource struct {
	cred   *azidentity.DefaultAzureCredential
	scopes policy.TokenRequestOptions
}

// NewTokenSource builds a TokenSource using azidentity's default
// credential chain (environment, managed identity, Azure CLI) for scopes.
func NewTokenSource(scopes ...string) (*TokenSource, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return &TokenSource{cred: cred, scopes: policy.TokenRequestOptions{Scopes: scopes}}, nil
}

// Apply sets req's Authorization header to a freshly minted bearer token.
func (t *TokenSource) Apply(ctx context.Context, req *http.Request) error {
	token, err := t.cred.GetToken(ctx, t.scopes)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.Token))
	return nil
}
