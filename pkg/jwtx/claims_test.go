package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/handoff/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	exampleIssuer   = "portal-handoff"
	exampleAudience = "analytics-app"
)

func TestNewHandoffClaims(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	c := jwtx.NewHandoffClaims("u1", "a@x.com", "scope-1", "Acme", exampleIssuer, exampleAudience, "jti-1", jwtx.DefaultHandoffTokenTTL, now)

	require.Equal(t, "u1", c.Subject)
	require.Equal(t, "a@x.com", c.Email)
	require.Equal(t, now.Unix(), c.IssuedAt)
	require.Equal(t, int64(120), c.ExpiresAt-c.IssuedAt)
	require.Equal(t, exampleIssuer, c.Issuer)
	require.Equal(t, exampleAudience, c.Audience)
	require.Equal(t, "scope-1", c.ScopeID)
	require.Equal(t, "Acme", c.Scope)
	require.Equal(t, "jti-1", c.ID)
	require.NotEmpty(t, c.Nonce)

	t.Run("ttl above the maximum falls back to default", func(t *testing.T) {
		c := jwtx.NewHandoffClaims("u1", "a@x.com", "", "", exampleIssuer, exampleAudience, "", time.Hour, now)
		require.Equal(t, int64(120), c.ExpiresAt-c.IssuedAt)
	})

	t.Run("nonce differs per call", func(t *testing.T) {
		a := jwtx.NewHandoffClaims("u1", "a@x.com", "", "", exampleIssuer, exampleAudience, "", 0, now)
		b := jwtx.NewHandoffClaims("u1", "a@x.com", "", "", exampleIssuer, exampleAudience, "", 0, now)
		require.NotEqual(t, a.Nonce, b.Nonce)
	})
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{Issuer: exampleIssuer}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(exampleIssuer))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		err := c.ValidateIssuer("other-service")
		require.ErrorIs(t, err, jwtx.ErrIssuer)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaims)
	})
}

func TestValidateAudience(t *testing.T) {
	c := &jwtx.Claims{Audience: exampleAudience}

	require.NoError(t, c.ValidateAudience(exampleAudience))

	err := c.ValidateAudience("billing-app")
	require.ErrorIs(t, err, jwtx.ErrAudience)
	require.ErrorIs(t, err, jwtx.ErrInvalidClaims)
}

func TestValidateExpiry(t *testing.T) {
	iat := time.Unix(1700000000, 0).UTC()
	c := &jwtx.Claims{IssuedAt: iat.Unix(), ExpiresAt: iat.Add(2 * time.Minute).Unix()}

	t.Run("before expiry", func(t *testing.T) {
		require.NoError(t, c.ValidateExpiry(iat.Add(time.Minute)))
	})

	t.Run("exactly at expiry", func(t *testing.T) {
		require.NoError(t, c.ValidateExpiry(iat.Add(2*time.Minute)))
	})

	t.Run("one millisecond after expiry", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateExpiry(iat.Add(2*time.Minute+time.Millisecond)), jwtx.ErrExpired)
	})

	t.Run("no exp claim", func(t *testing.T) {
		require.NoError(t, (&jwtx.Claims{}).ValidateExpiry(iat.Add(24*time.Hour)))
	})
}

func TestClaimTimes(t *testing.T) {
	c := &jwtx.Claims{IssuedAt: 1700000000, ExpiresAt: 1700000120}
	require.Equal(t, time.Unix(1700000000, 0).UTC(), c.IssuedAtTime())
	require.Equal(t, time.Unix(1700000120, 0).UTC(), c.ExpiresAtTime())
	require.True(t, (&jwtx.Claims{}).ExpiresAtTime().IsZero())
}
