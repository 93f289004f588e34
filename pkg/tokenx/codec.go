package tokenx

import (
	"encoding/base64"
	"encoding/json"
)

// encodeSegment serialises v to JSON and encodes the bytes as URL-safe
// base64 without padding. This is the only encoding used on the wire, so a
// segment produced here is byte-exact with what the signer signs.
func encodeSegment(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// decodeSegment reverses encodeSegment into v. A false return means the
// segment is malformed (bad base64url or bad JSON); callers treat that as a
// signal, not a fatal error.
func decodeSegment(s string, v any) bool {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false
	}
	return true
}
