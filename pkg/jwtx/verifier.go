package jwtx

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMalformed        = errors.New("jwtx: malformed token")
	ErrInvalidSignature = errors.New("jwtx: invalid signature")
	ErrExpired          = errors.New("jwtx: token expired")
	ErrInvalidClaims    = errors.New("jwtx: invalid claims")

	// ErrIssuer and ErrAudience are both ErrInvalidClaims for callers that
	// only care about the kind.
	ErrIssuer   = fmt.Errorf("%w: issuer mismatch", ErrInvalidClaims)
	ErrAudience = fmt.Errorf("%w: audience mismatch", ErrInvalidClaims)
)

// Validator checks tokens minted for one issuer/audience pair.
type Validator struct {
	Issuer   string
	Audience string
}

// NewValidator pins the issuer and audience literals.
func NewValidator(issuer, audience string) Validator {
	return Validator{Issuer: issuer, Audience: audience}
}

// Validate runs, in order: signature, expiry, issuer, audience. It stops at
// the first failure.
func (v Validator) Validate(d *Decoded, secret []byte, now time.Time) (*Claims, error) {
	if d == nil {
		return nil, ErrMalformed
	}

	sig, err := d.SignatureBytes()
	if err != nil || !VerifySignature([]byte(d.SigningInput), sig, secret) {
		return nil, ErrInvalidSignature
	}

	claims := d.Claims
	if err := claims.ValidateExpiry(now); err != nil {
		return nil, err
	}
	if err := claims.ValidateIssuer(v.Issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidateAudience(v.Audience); err != nil {
		return nil, err
	}

	return &claims, nil
}

// ValidateString decodes and validates a compact token.
func (v Validator) ValidateString(token string, secret []byte, now time.Time) (*Claims, error) {
	d, err := Decode(token)
	if err != nil {
		return nil, err
	}
	return v.Validate(d, secret, now)
}
