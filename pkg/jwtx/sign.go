package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

// AlgHS256 is the only algorithm this package signs with.
var AlgHS256 = jwt.SigningMethodHS256.Alg()

// Sign computes HMAC-SHA256 over message using secret.
//
// An empty secret still produces a MAC; refusing to sign with one is the
// caller's job.
func Sign(message, secret []byte) []byte {
	sig, err := jwt.SigningMethodHS256.Sign(string(message), secret)
	if err != nil {
		// Only reachable if SHA-256 is not linked in.
		return nil
	}
	return sig
}

// VerifySignature recomputes the MAC and compares it in constant time.
func VerifySignature(message, signature, secret []byte) bool {
	if len(signature) == 0 {
		return false
	}
	return jwt.SigningMethodHS256.Verify(string(message), signature, secret) == nil
}
