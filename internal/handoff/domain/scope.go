package domain

import (
	"slices"
	"time"
)

// TargetScope is a downstream deployment a principal may be handed off to.
// It is owned by the configuration store; the issuer only reads it.
type TargetScope struct {
	ID               string
	Name             string
	Secret           []byte   // plaintext; the store keeps it encrypted at rest
	AuthorizedEmails []string // normalised with NormalizeEmail
	Live             bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Authorizes reports whether email is in the scope's authorised set.
func (s TargetScope) Authorizes(email string) bool {
	email = NormalizeEmail(email)
	if email == "" {
		return false
	}
	return slices.Contains(s.AuthorizedEmails, email)
}

// ScopeSummary is the public view of a scope, safe to return to browsers.
type ScopeSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
