// Package sanitizer normalizes untrusted input before validation or storage.
package sanitizer

import "strings"

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// Emails are stored and compared in this form everywhere, which is what
// makes the unique-email constraint case-insensitive in practice.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TrimName collapses surrounding whitespace on free-form name input.
func TrimName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
