package stub

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/realhttp-go/rhttp/internal/json"
)

// CEL compiles expr once and returns a Matcher that evaluates it against a
// "request" variable exposing method, url, header and a parsed JSON body
// (spec.md §4.2's custom matcher, generalized beyond a Go predicate).
//
// Grounded on the teacher's internal/mcpproxy compileAuthorization/
// evalRuleCEL pair: a shared cel.Env, one cel.Program per expression,
// evaluated against a map[string]any activation. expr must evaluate to a
// bool; any other result, or a compile/eval error, makes the matcher never
// match.
func CEL(expr string) Matcher {
	prog, err := compileCEL(expr)
	if err != nil {
		return func(*Request) bool { return false }
	}
	return func(req *Request) bool {
		if req == nil {
			return false
		}
		activation := map[string]any{"request": requestActivation(req)}
		out, _, err := prog.Eval(activation)
		if err != nil {
			return false
		}
		matched, ok := out.Value().(bool)
		return ok && matched
	}
}

func compileCEL(expr string) (cel.Program, error) {
	env, err := cel.NewEnv(
		cel.Variable("request", cel.DynType),
		cel.OptionalTypes(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}
	ast, issues := env.Compile(strings.TrimSpace(expr))
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compiling matcher expression: %w", issues.Err())
	}
	prog, err := env.Program(ast, cel.CostLimit(10000), cel.EvalOptions(cel.OptOptimize))
	if err != nil {
		return nil, fmt.Errorf("building matcher program: %w", err)
	}
	return prog, nil
}

// requestActivation projects req into the plain maps/slices/scalars CEL's
// dynamic typing understands.
func requestActivation(req *Request) map[string]any {
	header := map[string]any{}
	for name, values := range req.Header {
		vs := make([]any, len(values))
		for i, v := range values {
			vs[i] = v
		}
		header[strings.ToLower(name)] = vs
	}

	var body any
	if len(req.Body) > 0 {
		_ = json.Unmarshal(req.Body, &body)
	}

	url := ""
	if req.URL != nil {
		url = req.URL.String()
	}

	return map[string]any{
		"method": req.Method,
		"url":    url,
		"header": header,
		"body":   body,
	}
}
