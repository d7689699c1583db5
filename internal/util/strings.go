// Package util provides small string helpers shared by the CLI and UI.
package util

import "strings"

// JoinOrNone joins strings with ", " or returns "(none)" for empty slices.
// Listings use it so an empty set still prints something.
func JoinOrNone(items []string) string {
	return JoinOrDefault(items, "(none)")
}

// JoinOrDefault joins strings with ", " or returns the default value for empty slices.
func JoinOrDefault(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}

// Plural returns word unchanged for a count of 1 and with an "s" otherwise.
func Plural(count int, word string) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// FirstNonEmpty returns the first non-empty value, or "".
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
