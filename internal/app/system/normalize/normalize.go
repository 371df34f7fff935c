// Package normalize canonicalizes user-supplied strings before they are
// stored or compared.
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role trims and lowercases a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Gender trims and lowercases a gender value.
func Gender(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Day trims and lowercases a day_of_week value.
func Day(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a raw query parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
