// Package normalize provides the canonical forms used when storing and
// comparing user input.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// NameCI returns the folded form of a name used for case-insensitive sorting.
func NameCI(s string) string {
	return text.Fold(Name(s))
}

// Role uppercases and trims a role name (ADMIN, LEADER, TEAM).
func Role(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Enum uppercases and trims an enumerated value such as a status or priority.
func Enum(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Origin lowercases and trims a plan origin identifier.
func Origin(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
