// Package validator implements the response validator chain (spec.md
// §4.5): an ordered, short-circuiting list of validators, each returning a
// tagged outcome {accept, acceptReplacement, fail, retry}.
//
// Grounded on the teacher's internal/translator.Translator interface shape
// ("explicit function-shaped contract" rather than an inheritance
// hierarchy) and on spec.md §9's explicit recommendation against a
// validator class hierarchy.
package validator

import (
	"github.com/realhttp-go/rhttp/header"
	"github.com/realhttp-go/rhttp/retry"
)

// Request is the minimal view of a request a Validator needs: just enough
// to decide retry eligibility and, for the alt-request validator, mutate
// headers ahead of the next attempt — independent of the richer
// client.Request.
type Request struct {
	Method      string
	URL         string
	RetriesUsed uint
	MaxRetries  uint
	Header      *header.Store
}

// Response is the minimal view of a completed response a Validator judges.
type Response struct {
	StatusCode   int // 0 means "no status": a transport failure
	Header       map[string][]string
	Body         []byte
	TransportErr error
}

// OutcomeKind tags which variant of Outcome is populated.
type OutcomeKind int

const (
	// OutcomeNext continues to the next validator with the current response.
	OutcomeNext OutcomeKind = iota
	// OutcomeNextWithReplacement continues with Replacement substituted in.
	OutcomeNextWithReplacement
	// OutcomeFail terminates the chain with Err.
	OutcomeFail
	// OutcomeRetry terminates the chain, asking the executor to retry per Strategy.
	OutcomeRetry
)

// Outcome is the tagged ValidatorOutcome value from spec.md §3.
type Outcome struct {
	Kind        OutcomeKind
	Replacement *Response
	Err         error
	Strategy    retry.Strategy
}

// Next accepts the response and continues the chain.
func Next() Outcome { return Outcome{Kind: OutcomeNext} }

// NextWithReplacement accepts replacement in place of the current response
// and continues the chain.
func NextWithReplacement(replacement *Response) Outcome {
	return Outcome{Kind: OutcomeNextWithReplacement, Replacement: replacement}
}

// Fail terminates the chain with err.
func Fail(err error) Outcome { return Outcome{Kind: OutcomeFail, Err: err} }

// Retry terminates the chain, asking the executor to retry per strategy.
func Retry(strategy retry.Strategy) Outcome { return Outcome{Kind: OutcomeRetry, Strategy: strategy} }

// Validator is a function (response, request) → Outcome (spec.md §3).
type Validator func(resp *Response, req *Request) Outcome

// Chain is an ordered, short-circuiting list of Validators (spec.md §4.5).
type Chain struct {
	Validators []Validator
}

// NewChain builds a Chain that runs validators in the given order; it adds
// none of its own. client.New builds its chain with the default validator
// appended after the caller's validators.
func NewChain(validators ...Validator) *Chain {
	return &Chain{Validators: validators}
}

// Run evaluates every validator in order against resp/req, stopping at the
// first non-Next* outcome. It returns the (possibly replaced) response and
// the terminating outcome — OutcomeNext if every validator accepted.
func (c *Chain) Run(resp *Response, req *Request) (*Response, Outcome) {
	current := resp
	for _, v := range c.Validators {
		outcome := v(current, req)
		switch outcome.Kind {
		case OutcomeNext:
			continue
		case OutcomeNextWithReplacement:
			current = outcome.Replacement
			continue
		default:
			return current, outcome
		}
	}
	return current, Outcome{Kind: OutcomeNext}
}
