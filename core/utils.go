package core

import "strings"

// CleanString trims surrounding whitespace from free-form input (names,
// comments, ticket subjects).
func CleanString(s string) string {
	return strings.TrimSpace(s)
}

// CleanLowerString normalizes case-insensitive identifiers: login
// identifiers, usernames and enum values (ticket priority, status) are
// stored and compared in lowercase.
func CleanLowerString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
