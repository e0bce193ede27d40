package validator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/realhttp-go/rhttp/rherr"
	"github.com/realhttp-go/rhttp/validator"
)

func TestDefaultValidatorEmptyResponseFailure(t *testing.T) {
	v := validator.Default(validator.DefaultConfig{AllowsEmptyResponses: false})
	resp := &validator.Response{StatusCode: 200}
	req := &validator.Request{MaxRetries: 3}

	outcome := v(resp, req)
	require.Equal(t, validator.OutcomeFail, outcome.Kind)
	require.True(t, rherr.Is(outcome.Err, rherr.CategoryEmptyResponse))
}

func TestDefaultValidatorAcceptsNonEmptyResponse(t *testing.T) {
	v := validator.Default(validator.DefaultConfig{})
	resp := &validator.Response{StatusCode: 200, Body: []byte("ok")}
	req := &validator.Request{MaxRetries: 3}

	outcome := v(resp, req)
	require.Equal(t, validator.OutcomeNext, outcome.Kind)
}

func TestDefaultValidatorRetriesOnRetriableStatus(t *testing.T) {
	v := validator.Default(validator.DefaultConfig{
		AllowsEmptyResponses: true,
		RetriableStatusCodes: validator.DefaultRetriableStatusCodes(),
		RetryBase:            10 * time.Millisecond,
		RetryCap:              time.Second,
	})
	resp := &validator.Response{StatusCode: 503}
	req := &validator.Request{RetriesUsed: 0, MaxRetries: 3}

	outcome := v(resp, req)
	require.Equal(t, validator.OutcomeRetry, outcome.Kind)
}

func TestDefaultValidatorFailsWhenBudgetExhausted(t *testing.T) {
	v := validator.Default(validator.DefaultConfig{
		AllowsEmptyResponses: true,
		RetriableStatusCodes: validator.DefaultRetriableStatusCodes(),
	})
	resp := &validator.Response{StatusCode: 503}
	req := &validator.Request{RetriesUsed: 3, MaxRetries: 3}

	outcome := v(resp, req)
	require.Equal(t, validator.OutcomeFail, outcome.Kind)
}

func TestChainShortCircuitsOnFail(t *testing.T) {
	calledSecond := false
	chain := validator.NewChain(
		func(resp *validator.Response, req *validator.Request) validator.Outcome {
			return validator.Fail(errors.New("boom"))
		},
		func(resp *validator.Response, req *validator.Request) validator.Outcome {
			calledSecond = true
			return validator.Next()
		},
	)

	_, outcome := chain.Run(&validator.Response{StatusCode: 200}, &validator.Request{})
	require.Equal(t, validator.OutcomeFail, outcome.Kind)
	require.False(t, calledSecond)
}

func TestAltRequestValidatorTriggersOnConfiguredStatus(t *testing.T) {
	var ranAlt bool
	cfg := validator.AltRequestConfig{
		TriggerStatuses: validator.DefaultAltRequestTriggers(),
		Delay:           0,
		DeriveAltRequest: func(req *validator.Request, resp *validator.Response) (any, error) {
			return "alt", nil
		},
		RunAlt: func(ctx context.Context, altReq any) (any, error) {
			ranAlt = true
			return map[string]string{"token": "T"}, nil
		},
		OnAltResponse: func(req *validator.Request, altResp any) {},
	}
	v := validator.AltRequest(cfg)

	outcome := v(&validator.Response{StatusCode: 401}, &validator.Request{})
	require.Equal(t, validator.OutcomeRetry, outcome.Kind)

	err := outcome.Strategy.RunAlt(context.Background())
	require.NoError(t, err)
	require.True(t, ranAlt)
}
