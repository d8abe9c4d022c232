package utils

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\s*(?:\+?(\d{1,3}))?[-. (]*(\d{3})[-. )]*(\d{3})[-. ]*(\d{4})\s*$`)
	appIDPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

	phoneSeparators = strings.NewReplacer(" ", "", "\t", "", "-", "", "(", "", ")", "", ".", "")
)

// IsValidEmail reports whether s has the shape local@domain.tld.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsValidPhoneNumber accepts an optional 1-3 digit country code followed by a
// 3-3-4 digit number with common separators. Extensions are rejected.
func IsValidPhoneNumber(s string) bool {
	compact := strings.Join(strings.Fields(s), "")
	if compact == "" {
		return false
	}
	return phonePattern.MatchString(compact)
}

// NormalizePhoneNumber strips separators and ensures exactly one leading '+'.
func NormalizePhoneNumber(s string) string {
	digits := phoneSeparators.Replace(strings.TrimSpace(s))
	digits = strings.TrimLeft(digits, "+")
	if digits == "" {
		return ""
	}
	return "+" + digits
}

// IsValidAppID reports whether s is 64 lowercase hex characters.
func IsValidAppID(s string) bool {
	return appIDPattern.MatchString(s)
}
