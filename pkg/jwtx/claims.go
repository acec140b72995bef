package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Default lifetimes for the handoff flow.
const (
	// DefaultHandoffTokenTTL is the lifetime of a minted handoff token. It is
	// kept short because the token travels through the browser.
	DefaultHandoffTokenTTL = 2 * time.Minute

	// MaxHandoffTokenTTL bounds exp - iat for anything this package mints.
	MaxHandoffTokenTTL = 2 * time.Minute
)

// Header is the fixed JOSE header of every token we produce.
type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// DefaultHeader is {"alg":"HS256","typ":"JWT"}.
var DefaultHeader = Header{Alg: AlgHS256, Typ: "JWT"}

// Claims carried by a handoff token. Times are seconds since the epoch,
// ExpiresAt == 0 means the claim is absent.
type Claims struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp,omitempty"`
	Issuer    string `json:"iss"`
	Audience  string `json:"aud"`

	// Nonce is random per token so two tokens for the same principal and
	// scope are never identical.
	Nonce string `json:"nonce"`

	// ID is the unique token identifier used in audit logs.
	ID string `json:"jti,omitempty"`

	// Scope is the human name of the target scope, ScopeID its identifier.
	Scope   string `json:"scope,omitempty"`
	ScopeID string `json:"scope_id,omitempty"`
}

// NewHandoffClaims builds the claims for a single handoff token. The
// caller supplies the jti so ids stay consistent with its own audit trail.
func NewHandoffClaims(
	subject, email string,
	scopeID, scopeName string,
	issuer, audience string,
	jti string,
	ttl time.Duration,
	now time.Time,
) Claims {
	if ttl <= 0 || ttl > MaxHandoffTokenTTL {
		ttl = DefaultHandoffTokenTTL
	}

	iat := now.Unix()
	return Claims{
		Subject:   subject,
		Email:     email,
		IssuedAt:  iat,
		ExpiresAt: iat + int64(ttl/time.Second),
		Issuer:    issuer,
		Audience:  audience,
		Nonce:     NewNonce(),
		ID:        jti,
		Scope:     scopeName,
		ScopeID:   scopeID,
	}
}

// NewNonce returns a URL-safe random value with 128 bits of entropy.
func NewNonce() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// IssuedAtTime returns iat as a time.Time in UTC.
func (c *Claims) IssuedAtTime() time.Time {
	return time.Unix(c.IssuedAt, 0).UTC()
}

// ExpiresAtTime returns exp as a time.Time in UTC, or the zero time when
// the claim is absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.ExpiresAt, 0).UTC()
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks if the audience matches expected value.
func (c *Claims) ValidateAudience(expected string) error {
	if c.Audience != expected {
		return ErrAudience
	}
	return nil
}

// ValidateExpiry fails with ErrExpired once exp (in milliseconds) is
// strictly before now. A token without exp never expires here.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt != 0 && c.ExpiresAt*1000 < now.UnixMilli() {
		return ErrExpired
	}
	return nil
}
