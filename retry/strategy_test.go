package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/realhttp-go/rhttp/retry"
)

func TestDelayForAttemptVariants(t *testing.T) {
	require.Equal(t, time.Duration(0), retry.Immediate().DelayForAttempt(1))
	require.Equal(t, 5*time.Second, retry.Delayed(5*time.Second).DelayForAttempt(3))

	exp := retry.Exponential(10*time.Millisecond, 50*time.Millisecond)
	require.Equal(t, 10*time.Millisecond, exp.DelayForAttempt(1))
	require.Equal(t, 20*time.Millisecond, exp.DelayForAttempt(2))
	require.Equal(t, 50*time.Millisecond, exp.DelayForAttempt(10)) // capped

	fib := retry.Fibonacci(3 * time.Second)
	require.Equal(t, 1*time.Second, fib.DelayForAttempt(1))
	require.Equal(t, 1*time.Second, fib.DelayForAttempt(2))
	require.Equal(t, 2*time.Second, fib.DelayForAttempt(3))
	require.Equal(t, 3*time.Second, fib.DelayForAttempt(10)) // capped
}

func TestLoopRetriesUntilSuccess(t *testing.T) {
	var attempts int
	err := retry.Loop(context.Background(), 5, func(ctx context.Context) (bool, retry.Strategy, error) {
		attempts++
		if attempts < 3 {
			return true, retry.Delayed(time.Millisecond), nil
		}
		return false, retry.Strategy{}, nil
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestLoopStopsAtMaxAttempts(t *testing.T) {
	var attempts int
	var retriesSeen []uint

	err := retry.Loop(context.Background(), 2, func(ctx context.Context) (bool, retry.Strategy, error) {
		attempts++
		return true, retry.Delayed(time.Millisecond), nil
	}, func(attempt uint, s retry.Strategy) {
		retriesSeen = append(retriesSeen, attempt)
	})

	// retry-go's Do is never told the caller ran out of attempts mid-flight;
	// the caller (client.Client.Fetch) detects an unresolved retry request
	// after Loop returns and translates it to its own budget-exhausted
	// error. Loop itself just stops calling step after maxAttempts+1 tries.
	require.Equal(t, 3, attempts)
	require.Len(t, retriesSeen, 2)
	_ = err
}

func TestLoopPropagatesTerminalError(t *testing.T) {
	boom := errors.New("boom")
	err := retry.Loop(context.Background(), 5, func(ctx context.Context) (bool, retry.Strategy, error) {
		return false, retry.Strategy{}, boom
	}, nil)

	require.ErrorIs(t, err, boom)
}

func TestLoopAbortsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var attempts int

	err := retry.Loop(ctx, 10, func(ctx context.Context) (bool, retry.Strategy, error) {
		attempts++
		if attempts == 1 {
			cancel()
		}
		return true, retry.Delayed(10 * time.Millisecond), nil
	}, nil)

	require.Error(t, err)
	require.LessOrEqual(t, attempts, 2)
}
