package domain

import "time"

// DefaultExchangeStateTTL is how long a state handle stays redeemable.
const DefaultExchangeStateTTL = 5 * time.Minute

// ExchangeState is a one-time handle wrapping a minted token.
type ExchangeState struct {
	ID          string // UUID v4
	Token       string
	PrincipalID string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether now is strictly after the expiry. Both sides are
// compared in milliseconds, the precision the store keeps.
func (s ExchangeState) Expired(now time.Time) bool {
	return now.UnixMilli() > s.ExpiresAt.UnixMilli()
}
