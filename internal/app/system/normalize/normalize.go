// Package normalize canonicalizes user-supplied identity fields before they
// are stored or used in lookups.
package normalize

import (
	"strings"
	"unicode"
)

// Email trims and lower-cases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of spaces.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Phone keeps only the digits of s, so "98765 43210" and "9876-543-210"
// compare equal.
func Phone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneInput canonicalizes a phone typed into a form. Spaces, dashes, dots
// and parentheses are dropped as in Phone. Input holding any other
// character is only trimmed, so validation still rejects it.
func PhoneInput(s string) string {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if !unicode.IsDigit(r) && !strings.ContainsRune(" -.()", r) {
			return s
		}
	}
	return Phone(s)
}
