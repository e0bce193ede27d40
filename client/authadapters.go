package client

import (
	"context"
	"net/http"

	"github.com/realhttp-go/rhttp/rhttpauth"
	"github.com/realhttp-go/rhttp/rhttpaws"
	"github.com/realhttp-go/rhttp/rhttpazure"
	"github.com/realhttp-go/rhttp/validator"
)

// OAuthSilentLogin builds an AltRequestConfig that, on a 401/403, refreshes
// refresher's OAuth2 token and installs the resulting bearer header on the
// retried original request (spec.md §8 scenario 2).
func OAuthSilentLogin(refresher *rhttpauth.TokenRefresher) validator.AltRequestConfig {
	return validator.AltRequestConfig{
		TriggerStatuses: validator.DefaultAltRequestTriggers(),
		DeriveAltRequest: func(req *validator.Request, resp *validator.Response) (any, error) {
			return nil, nil
		},
		RunAlt: func(ctx context.Context, _ any) (any, error) {
			return refresher.Refresh(ctx)
		},
		OnAltResponse: func(req *validator.Request, altResp any) {
			if headerValue, ok := altResp.(string); ok {
				req.Header.Set("Authorization", headerValue)
			}
		},
	}
}

// AWSSigV4AltRequest builds an AltRequestConfig that, on a 401/403, re-signs
// the retried original request with signer. bodyHash supplies the
// hex-encoded SHA256 payload hash SigV4 signing needs (rhttpaws.HashBody);
// pass nil for streamed bodies to use rhttpaws.UnsignedPayload.
func AWSSigV4AltRequest(signer *rhttpaws.Signer, bodyHash func() string) validator.AltRequestConfig {
	return validator.AltRequestConfig{
		TriggerStatuses: validator.DefaultAltRequestTriggers(),
		DeriveAltRequest: func(req *validator.Request, resp *validator.Response) (any, error) {
			return req, nil
		},
		RunAlt: func(ctx context.Context, altReq any) (any, error) {
			vreq, _ := altReq.(*validator.Request)
			httpReq, err := http.NewRequestWithContext(ctx, vreq.Method, vreq.URL, nil)
			if err != nil {
				return nil, err
			}
			hash := rhttpaws.UnsignedPayload
			if bodyHash != nil {
				hash = bodyHash()
			}
			if err := signer.Sign(ctx, httpReq, hash); err != nil {
				return nil, err
			}
			return httpReq.Header.Get("Authorization"), nil
		},
		OnAltResponse: applyAuthorizationHeader,
	}
}

// AzureADAltRequest builds an AltRequestConfig that mints a fresh Azure AD
// bearer token via source on a 401/403 and installs it on the retried
// original request.
func AzureADAltRequest(source *rhttpazure.TokenSource) validator.AltRequestConfig {
	return validator.AltRequestConfig{
		TriggerStatuses: validator.DefaultAltRequestTriggers(),
		DeriveAltRequest: func(req *validator.Request, resp *validator.Response) (any, error) {
			return req.URL, nil
		},
		RunAlt: func(ctx context.Context, altReq any) (any, error) {
			target, _ := altReq.(string)
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
			if err != nil {
				return nil, err
			}
			if err := source.Apply(ctx, httpReq); err != nil {
				return nil, err
			}
			return httpReq.Header.Get("Authorization"), nil
		},
		OnAltResponse: applyAuthorizationHeader,
	}
}

func applyAuthorizationHeader(req *validator.Request, altResp any) {
	if headerValue, ok := altResp.(string); ok {
		req.Header.Set("Authorization", headerValue)
	}
}
