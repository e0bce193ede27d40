// Package retry implements the tagged RetryStrategy value, its delay
// computation, and a Loop driver built on github.com/avast/retry-go/v4 —
// the pack's idiomatic retry-backoff library (both kgateway checkouts in
// the retrieval pack depend on it directly, via retry.Do/Attempts/Delay/
// DelayType for exactly this kind of capped-backoff retry loop).
package retry

import (
	"context"
	"errors"
	"time"

	retrygo "github.com/avast/retry-go/v4"
)

// Kind tags which variant of RetryStrategy a value holds.
type Kind int

const (
	// KindImmediate retries with no delay.
	KindImmediate Kind = iota
	// KindDelayed retries after a fixed delay.
	KindDelayed
	// KindExponential retries after an exponentially growing delay, capped.
	KindExponential
	// KindFibonacci retries after a Fibonacci-sequence delay, capped.
	KindFibonacci
	// KindAfter runs an alt request, lets a callback mutate the original
	// request from the alt response, then retries after a fixed delay.
	KindAfter
)

// AltRequestRunner performs the alt request for a KindAfter strategy.
type AltRequestRunner func(ctx context.Context) error

// Strategy is the tagged RetryStrategy value from spec.md §3.
type Strategy struct {
	Kind Kind

	// Delayed, After
	Delay time.Duration

	// Exponential, Fibonacci
	Base time.Duration
	Cap  time.Duration

	// After
	RunAlt      AltRequestRunner
	OnAltResult func(altErr error)
}

// Immediate returns a Strategy that retries with no delay.
func Immediate() Strategy { return Strategy{Kind: KindImmediate} }

// Delayed returns a Strategy that retries after a fixed delay.
func Delayed(d time.Duration) Strategy { return Strategy{Kind: KindDelayed, Delay: d} }

// Exponential returns a Strategy computing min(cap, base*2^(attempt-1)).
func Exponential(base, cap time.Duration) Strategy {
	return Strategy{Kind: KindExponential, Base: base, Cap: cap}
}

// Fibonacci returns a Strategy computing min(cap, fib(attempt)).
func Fibonacci(cap time.Duration) Strategy {
	return Strategy{Kind: KindFibonacci, Cap: cap}
}

// After returns a Strategy that runs runAlt, invokes onAltResult with its
// outcome, then retries after delay. onAltResult may be nil.
func After(runAlt AltRequestRunner, delay time.Duration, onAltResult func(error)) Strategy {
	return Strategy{Kind: KindAfter, Delay: delay, RunAlt: runAlt, OnAltResult: onAltResult}
}

// DelayForAttempt computes the wait before retry attempt n (1-indexed: the
// first retry is attempt 1). KindAfter's delay is s.Delay — the alt
// request itself runs outside this schedule (spec.md §3, RetryStrategy).
func (s Strategy) DelayForAttempt(attempt uint) time.Duration {
	if attempt == 0 {
		attempt = 1
	}
	switch s.Kind {
	case KindImmediate:
		return 0
	case KindDelayed, KindAfter:
		return s.Delay
	case KindExponential:
		return capped(s.Base<<(attempt-1), s.Cap)
	case KindFibonacci:
		return capped(time.Duration(fib(attempt))*time.Second, s.Cap)
	default:
		return 0
	}
}

func capped(d, cap time.Duration) time.Duration {
	if cap > 0 && d > cap {
		return cap
	}
	return d
}

// fib returns the n-th 1-indexed Fibonacci number (fib(1)=1, fib(2)=1,
// fib(3)=2, ...).
func fib(n uint) uint64 {
	a, b := uint64(1), uint64(1)
	for i := uint(1); i < n; i++ {
		a, b = b, a+b
	}
	return a
}

// Attempt is one pass of the underlying build-transport-validate cycle the
// Loop drives. It returns retryNeeded=true and the Strategy chosen by the
// validator chain when another attempt should be made, or retryNeeded=false
// when the pass is final: with a nil error on success, or with the terminal
// error, which Loop returns unchanged.
type Attempt func(ctx context.Context) (retryNeeded bool, strategy Strategy, err error)

// Loop drives repeated Attempts through retry-go's Do, translating this
// package's Strategy into retry-go's per-attempt delay. maxAttempts bounds
// the number of retries (the initial attempt plus maxAttempts retries, per
// spec.md's "retries_used <= maxRetries" invariant). onRetry is called
// before each wait with the Strategy that was chosen and the attempt index
// it is about to wait before (1-indexed), for delegate notification.
//
// Loop returns the error from the final Attempt, or nil if some Attempt
// reported retryNeeded=false with a nil error.
func Loop(ctx context.Context, maxAttempts uint, step Attempt, onRetry func(attempt uint, s Strategy)) error {
	var lastStrategy Strategy
	var done bool
	var finalErr error
	continueErr := errors.New("retry: another attempt requested")

	retryableFunc := func() error {
		retryNeeded, strategy, err := step(ctx)
		if !retryNeeded {
			done = true
			finalErr = err
			if err == nil {
				return nil
			}
			return retrygo.Unrecoverable(err)
		}
		lastStrategy = strategy
		if err != nil {
			return err
		}
		return continueErr
	}

	// retry-go numbers its waits from 0; DelayForAttempt and onRetry count
	// retries from 1.
	delayType := retrygo.DelayTypeFunc(func(n uint, _ error, _ *retrygo.Config) time.Duration {
		return lastStrategy.DelayForAttempt(n + 1)
	})

	err := retrygo.Do(
		retryableFunc,
		retrygo.Context(ctx),
		retrygo.Attempts(maxAttempts+1),
		retrygo.DelayType(delayType),
		retrygo.LastErrorOnly(true),
		retrygo.OnRetry(func(n uint, _ error) {
			// retry-go also reports the final failed attempt, which no wait follows.
			if onRetry != nil && n < maxAttempts {
				onRetry(n+1, lastStrategy)
			}
		}),
	)
	if done {
		return finalErr
	}
	return err
}
