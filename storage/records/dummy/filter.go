package dummyclient

import (
	"fmt"
	"strings"
)

// matchFilter evaluates the filter subset this module emits:
// clauses joined by top-level &&, each either a parenthesized OR group or a
// single comparison (`field = "value"`, `field ?= "value"`, `field = true`).
// `?=` matches any element when the field holds a list.
func matchFilter(rec map[string]interface{}, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	for _, clause := range splitOutsideParens(filter, "&&") {
		if !matchClause(rec, clause) {
			return false
		}
	}
	return true
}

func matchClause(rec map[string]interface{}, clause string) bool {
	clause = strings.TrimSpace(clause)
	if strings.HasPrefix(clause, "(") && strings.HasSuffix(clause, ")") {
		for _, alt := range splitOutsideParens(clause[1:len(clause)-1], "||") {
			if matchClause(rec, alt) {
				return true
			}
		}
		return false
	}
	if alts := splitOutsideParens(clause, "||"); len(alts) > 1 {
		for _, alt := range alts {
			if matchClause(rec, alt) {
				return true
			}
		}
		return false
	}
	return matchComparison(rec, clause)
}

func matchComparison(rec map[string]interface{}, expr string) bool {
	var field, op, lit string
	if i := strings.Index(expr, "?="); i >= 0 {
		field, op, lit = expr[:i], "?=", expr[i+2:]
	} else if i = strings.Index(expr, "="); i >= 0 {
		field, op, lit = expr[:i], "=", expr[i+1:]
	} else {
		return false
	}
	field = strings.TrimSpace(field)
	lit = strings.TrimSpace(lit)

	var want interface{}
	switch {
	case lit == "true":
		want = true
	case lit == "false":
		want = false
	case strings.HasPrefix(lit, `"`) && strings.HasSuffix(lit, `"`):
		want = unquote(lit)
	default:
		want = lit
	}

	got := rec[field]
	if op == "?=" {
		if list, ok := got.([]interface{}); ok {
			for _, v := range list {
				if valueEquals(v, want) {
					return true
				}
			}
			return false
		}
	}
	return valueEquals(got, want)
}

func valueEquals(got, want interface{}) bool {
	if got == nil {
		return want == "" || want == false
	}
	if b, ok := want.(bool); ok {
		gb, _ := got.(bool)
		return gb == b
	}
	return fmt.Sprintf("%v", got) == fmt.Sprintf("%v", want)
}

func unquote(s string) string {
	s = s[1 : len(s)-1]
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

// splitOutsideParens splits s on sep occurrences at paren depth zero.
func splitOutsideParens(s, sep string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '"':
			// skip over quoted literals
			for i++; i < len(s); i++ {
				if s[i] == '\\' {
					i++
					continue
				}
				if s[i] == '"' {
					break
				}
			}
		}
		if depth == 0 && strings.HasPrefix(s[i:], sep) {
			parts = append(parts, strings.TrimSpace(s[start:i]))
			i += len(sep) - 1
			start = i + 1
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}
