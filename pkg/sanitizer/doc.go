// Package sanitizer provides input normalization for booking and tenant data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings rather than errors.
//
// Normalization runs before validation, so validators always see canonical
// values:
//   - Phone numbers: E.164 format (+[country][number])
//   - Emails: lowercase, trimmed
//   - Names: collapsed whitespace, trimmed
package sanitizer
