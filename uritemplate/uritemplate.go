// Package uritemplate implements RFC 6570 URI Templates, levels 1-3: the
// simple ({var}), reserved ({+var}), fragment ({#var}), label ({.var}),
// path-segment ({/var}), and query ({?var}, {&var}) expansions; the
// path-style parameter operator ({;var}) is expanded like a simple
// expression. It backs
// both the request builder's path-variable expansion and the stub
// registry's URITemplate matcher (spec.md §4.2), so a single expansion
// implementation also drives matching in reverse.
package uritemplate

import (
	"net/url"
	"regexp"
	"strings"
)

// operator identifies which RFC 6570 expansion a {...} expression uses.
type operator byte

const (
	opSimple   operator = 0
	opReserved operator = '+'
	opFragment operator = '#'
	opLabel    operator = '.'
	opPath     operator = '/'
	opQuery    operator = '?'
	opQueryAmp operator = '&'
)

type varSpec struct {
	name     string
	explode  bool
	maxLen   int
}

type token struct {
	literal string // non-empty when this token is a literal run
	op      operator
	vars    []varSpec // non-empty when this token is an expression
}

var exprRe = regexp.MustCompile(`\{([+#./;?&]?)([^{}]*)\}`)

func tokenize(tpl string) []token {
	var toks []token
	last := 0
	for _, loc := range exprRe.FindAllStringSubmatchIndex(tpl, -1) {
		start, end := loc[0], loc[1]
		if start > last {
			toks = append(toks, token{literal: tpl[last:start]})
		}
		opStr := tpl[loc[2]:loc[3]]
		varsStr := tpl[loc[4]:loc[5]]
		var op operator
		if opStr != "" {
			op = operator(opStr[0])
		}
		var specs []varSpec
		for _, part := range strings.Split(varsStr, ",") {
			if part == "" {
				continue
			}
			spec := varSpec{name: part}
			if strings.HasSuffix(part, "*") {
				spec.explode = true
				spec.name = strings.TrimSuffix(part, "*")
			} else if idx := strings.Index(part, ":"); idx >= 0 {
				spec.name = part[:idx]
			}
			specs = append(specs, spec)
		}
		toks = append(toks, token{op: op, vars: specs})
		last = end
	}
	if last < len(tpl) {
		toks = append(toks, token{literal: tpl[last:]})
	}
	return toks
}

// Expand substitutes vars into tpl and returns the resulting URI. Missing
// variables expand to empty per RFC 6570's undefined-variable rule.
func Expand(tpl string, vars map[string]string) string {
	var b strings.Builder
	for _, tok := range tokenize(tpl) {
		if tok.literal != "" {
			b.WriteString(tok.literal)
			continue
		}
		b.WriteString(expandToken(tok, vars))
	}
	return b.String()
}

func expandToken(tok token, vars map[string]string) string {
	var sep, prefix string
	named, allowReserved := false, false
	switch tok.op {
	case opReserved:
		sep, allowReserved = ",", true
	case opFragment:
		prefix, sep, allowReserved = "#", ",", true
	case opLabel:
		prefix, sep = ".", "."
	case opPath:
		prefix, sep = "/", "/"
	case opQuery:
		prefix, sep, named = "?", "&", true
	case opQueryAmp:
		prefix, sep, named = "&", "&", true
	default:
		sep = ","
	}

	var parts []string
	for _, v := range tok.vars {
		val, ok := vars[v.name]
		if !ok || (val == "" && !named) {
			continue
		}
		if named {
			if val == "" {
				parts = append(parts, v.name)
			} else {
				parts = append(parts, v.name+"="+pctEncode(val, allowReserved))
			}
			continue
		}
		parts = append(parts, pctEncode(val, allowReserved))
	}
	if len(parts) == 0 {
		return ""
	}
	return prefix + strings.Join(parts, sep)
}

func pctEncode(s string, allowReserved bool) string {
	if allowReserved {
		return (&url.URL{Path: s}).EscapedPath()
	}
	return url.QueryEscape(s)
}

// Match attempts to recover the variable bindings that would expand tpl
// into uri. It supports the same operator set as Expand. ok is false when
// uri does not fit the template's literal structure.
func Match(tpl string, uri string) (map[string]string, bool) {
	toks := tokenize(tpl)

	var reBuilder strings.Builder
	reBuilder.WriteString("^")
	var names []string
	for _, tok := range toks {
		if tok.literal != "" {
			reBuilder.WriteString(regexp.QuoteMeta(tok.literal))
			continue
		}
		for i, v := range tok.vars {
			names = append(names, v.name)
			switch tok.op {
			case opReserved, opFragment:
				if i == 0 && tok.op == opFragment {
					reBuilder.WriteString(regexp.QuoteMeta("#"))
				}
				reBuilder.WriteString("(.+)")
			case opLabel:
				reBuilder.WriteString(regexp.QuoteMeta(".") + "([^./]+)")
			case opPath:
				reBuilder.WriteString(regexp.QuoteMeta("/") + "([^/]+)")
			case opQuery, opQueryAmp:
				sep := "&"
				if i == 0 && tok.op == opQuery {
					sep = "?"
				}
				reBuilder.WriteString(regexp.QuoteMeta(sep+v.name+"=") + "([^&#]*)")
			default:
				reBuilder.WriteString("([^/,]+)")
			}
			if i < len(tok.vars)-1 && (tok.op == opSimple || tok.op == opReserved || tok.op == opFragment) {
				reBuilder.WriteString(",")
			}
		}
	}
	reBuilder.WriteString("$")

	re, err := regexp.Compile(reBuilder.String())
	if err != nil {
		return nil, false
	}
	m := re.FindStringSubmatch(uri)
	if m == nil {
		return nil, false
	}
	out := make(map[string]string, len(names))
	for i, name := range names {
		if i+1 >= len(m) {
			continue
		}
		decoded, err := url.QueryUnescape(m[i+1])
		if err != nil {
			decoded = m[i+1]
		}
		out[name] = decoded
	}
	return out, true
}
