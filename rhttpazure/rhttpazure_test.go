package rhttpazure_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/realhttp-go/rhttp/rhttpazure"
)

func TestNewTokenSourceResolvesCredentialLazily(t *testing.T) {
	// azidentity's DefaultAzureCredential defers the actual credential lookup
	// to the first token request, so construction alone must not require
	// network access or a configured environment.
	source, err := rhttpazure.NewTokenSource("https://management.azure.com/.default")
	require.NoError(t, err)
	require.NotNil(t, source)
}
