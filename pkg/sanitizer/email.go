package sanitizer

import "strings"

// NormalizeEmail lowercases and trims an email address. Structural
// validation is the validator's job; this only canonicalizes.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
