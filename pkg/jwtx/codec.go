package jwtx

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

var segmentEncoding = base64.RawURLEncoding

// Decoded is a token split into its parts. Nothing in it has been verified.
type Decoded struct {
	Header Header
	Claims Claims

	// SigningInput is the literal "header.claims" string the MAC covers.
	SigningInput string

	// Signature is the raw base64url signature segment.
	Signature string
}

// Encode serialises header and claims, signs "header.claims" with secret
// and returns the compact three-segment token.
func Encode(header Header, claims Claims, secret []byte) (string, error) {
	h, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("jwtx: encode header: %w", err)
	}
	c, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("jwtx: encode claims: %w", err)
	}

	signingInput := segmentEncoding.EncodeToString(h) + "." + segmentEncoding.EncodeToString(c)
	sig := Sign([]byte(signingInput), secret)

	return signingInput + "." + segmentEncoding.EncodeToString(sig), nil
}

// Decode splits a token into its segments and parses the JSON parts. It
// never checks the signature, that is Validator's job.
func Decode(token string) (*Decoded, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformed, len(parts))
	}

	var d Decoded
	if err := decodeSegment(parts[0], &d.Header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}
	if err := decodeSegment(parts[1], &d.Claims); err != nil {
		return nil, fmt.Errorf("%w: claims: %v", ErrMalformed, err)
	}

	d.SigningInput = parts[0] + "." + parts[1]
	d.Signature = parts[2]
	return &d, nil
}

// SignatureBytes decodes the signature segment. Decoding is strict so a
// segment whose trailing bits are not zero is rejected instead of mapping
// onto the same MAC as the canonical spelling.
func (d *Decoded) SignatureBytes() ([]byte, error) {
	return segmentEncoding.Strict().DecodeString(d.Signature)
}

func decodeSegment(seg string, v any) error {
	raw, err := segmentEncoding.DecodeString(seg)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
