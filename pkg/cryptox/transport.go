package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// TransportHash is the fixed-scheme digest used only by the bootstrap admin
// comparison path: a plain hex SHA-256 of the credential. It is not a
// storage hash; stored records always use scrypt.
func TransportHash(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}

// TransportHashEqual compares two transport hashes in constant time.
func TransportHashEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
