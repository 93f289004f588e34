package tokenx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// sign computes an HMAC-SHA256 MAC over the UTF-8 bytes of text, keyed with
// secret, and returns it URL-safe base64 encoded without padding.
func sign(text, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(text))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// verifyMAC recomputes the MAC for text and compares it against the supplied
// value. hmac.Equal is constant time; never swap this for ==.
func verifyMAC(text, macText, secret string) bool {
	expected := sign(text, secret)
	return hmac.Equal([]byte(expected), []byte(macText))
}
