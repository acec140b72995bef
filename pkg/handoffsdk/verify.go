package handoffsdk

import (
	"errors"
	"time"

	"github.com/aussiebroadwan/handoff/pkg/jwtx"
)

var ErrNoSecret = errors.New("handoffsdk: scope secret is empty")

// Verifier checks handoff tokens on the destination side. It holds the
// scope secret shared with the issuer and the pinned issuer and audience.
type Verifier struct {
	Validator jwtx.Validator
	Secret    []byte

	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// NewVerifier pins issuer, audience and the scope secret.
func NewVerifier(issuer, audience string, secret []byte) *Verifier {
	return &Verifier{
		Validator: jwtx.NewValidator(issuer, audience),
		Secret:    secret,
		Now:       time.Now,
	}
}

// Verify validates token and returns its claims. Errors are the jwtx
// sentinels (ErrMalformed, ErrInvalidSignature, ErrExpired, ErrIssuer,
// ErrAudience).
func (v *Verifier) Verify(token string) (*jwtx.Claims, error) {
	if len(v.Secret) == 0 {
		return nil, ErrNoSecret
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return v.Validator.ValidateString(token, v.Secret, now())
}
