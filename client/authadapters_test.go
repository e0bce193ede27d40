package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/realhttp-go/rhttp/client"
	"github.com/realhttp-go/rhttp/header"
	"github.com/realhttp-go/rhttp/rhttpaws"
	"github.com/realhttp-go/rhttp/validator"
)

func TestAWSSigV4AltRequestSignsRetriedRequest(t *testing.T) {
	signer := rhttpaws.NewSignerWithStaticCredentials("AKIDEXAMPLE", "secret", "", "execute-api", "us-east-1")
	cfg := client.AWSSigV4AltRequest(signer, nil)

	v := validator.AltRequest(cfg)
	req := &validator.Request{Method: "GET", URL: "https://api.example.com/widgets", Header: header.New()}

	outcome := v(&validator.Response{StatusCode: 401}, req)
	require.Equal(t, validator.OutcomeRetry, outcome.Kind)

	require.NoError(t, outcome.Strategy.RunAlt(context.Background()))
	authHeader, ok := req.Header.Value("Authorization")
	require.True(t, ok)
	require.Contains(t, authHeader, "AWS4-HMAC-SHA256")
}
