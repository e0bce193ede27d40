package rherr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/realhttp-go/rhttp/rherr"
)

func TestWrapPreservesCauseAndCategory(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := rherr.Wrap(rherr.CategoryNetwork, cause).WithStatus(0)

	require.True(t, rherr.Is(err, rherr.CategoryNetwork))
	require.True(t, errors.Is(err, cause))
	require.False(t, rherr.Is(err, rherr.CategoryTimeout))
}

func TestNewCarriesMessage(t *testing.T) {
	err := rherr.New(rherr.CategoryEmptyResponse, "zero-byte body with status 200")
	require.Contains(t, err.Error(), "zero-byte body with status 200")
	require.True(t, rherr.Is(err, rherr.CategoryEmptyResponse))
}
