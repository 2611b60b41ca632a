package record

import "strings"

// Quote returns v as a double-quoted filter literal.
func Quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

// Equal builds a `field = "value"` clause.
func Equal(field, value string) string {
	return field + " = " + Quote(value)
}

// AnyOf builds a parenthesized OR of equality clauses on field.
func AnyOf(field string, values []string) string {
	clauses := make([]string, 0, len(values))
	for _, v := range values {
		clauses = append(clauses, Equal(field, v))
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return "(" + strings.Join(clauses, " || ") + ")"
}

// And joins clauses with &&, skipping empty ones.
func And(clauses ...string) string {
	parts := clauses[:0:0]
	for _, c := range clauses {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " && ")
}
