package utils

import "strings"

// NormalizeEmail lowercases and trims an email for the (tenant, email)
// customer identity key.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
