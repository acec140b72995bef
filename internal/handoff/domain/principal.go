package domain

import "strings"

// Principal is the user identity derived from a verified portal session.
// It is never persisted by this service.
type Principal struct {
	ID    string
	Email string
}

// IsZero reports whether the principal carries no identity at all.
func (p Principal) IsZero() bool {
	return strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Email) == ""
}

// NormalizeEmail lowercases and trims an address for membership checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
