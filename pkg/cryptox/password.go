// Package cryptox provides the password-hashing primitive for the auth core:
// salted scrypt records in a self-describing encoded format, plus the fixed
// transport hash used by the admin bootstrap path.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/crypto/scrypt"
)

// scrypt cost parameters for newly created records. Verification always
// uses the parameters stored in the record itself, so these can be raised
// later without invalidating existing hashes.
const (
	scryptN = 16384
	scryptR = 8
	scryptP = 1

	saltLength = 16
	keyLength  = 64

	// maxKDFMemory caps the scrypt working set a record may demand during
	// verification (128 * N * r bytes). Records over the cap are rejected
	// rather than derived.
	maxKDFMemory = 32 << 20

	algorithmTag = "scrypt"

	// Password policy bounds, enforced at hash-creation time only.
	minPasswordLength = 8
	maxPasswordLength = 128
)

// PolicyError reports a password that fails the creation-time policy. The
// reason is meant for end users; it describes their input, never system
// state.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string {
	return "cryptox: invalid password: " + e.Reason
}

// ValidatePassword applies the creation-time policy: length within
// [8, 128], at least one letter and at least one digit.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return &PolicyError{Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if len(password) > maxPasswordLength {
		return &PolicyError{Reason: fmt.Sprintf("must be at most %d characters", maxPasswordLength)}
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		return &PolicyError{Reason: "must contain at least one letter"}
	}
	if !hasDigit {
		return &PolicyError{Reason: "must contain at least one digit"}
	}

	return nil
}

// HashPassword validates the password policy, derives a 64-byte scrypt key
// with a random 16-byte salt, and encodes everything into one
// self-contained record: scrypt$N$r$p$base64(salt)$base64(key).
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return "", fmt.Errorf("cryptox: scrypt derivation failed: %w", err)
	}

	return strings.Join([]string{
		algorithmTag,
		strconv.Itoa(scryptN),
		strconv.Itoa(scryptR),
		strconv.Itoa(scryptP),
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	}, "$"), nil
}

// VerifyPassword re-derives the key using the record's own cost parameters
// and compares in constant time. Malformed records (wrong field count,
// non-numeric parameters, bad base64, unknown tag, cost over the memory
// cap) return false, never an error: a stored hash is untrusted input here.
func VerifyPassword(password, record string) bool {
	parts := strings.Split(record, "$")
	if len(parts) != 6 {
		return false
	}
	if parts[0] != algorithmTag {
		return false
	}

	n, errN := strconv.Atoi(parts[1])
	r, errR := strconv.Atoi(parts[2])
	p, errP := strconv.Atoi(parts[3])
	if errN != nil || errR != nil || errP != nil {
		return false
	}
	if n <= 1 || r <= 0 || p <= 0 {
		return false
	}
	if 128*int64(n)*int64(r) > maxKDFMemory {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false
	}
	stored, err := base64.StdEncoding.DecodeString(parts[5])
	if err != nil || len(stored) == 0 {
		return false
	}

	// Same key length as stored so future parameter upgrades keep verifying
	// old records.
	derived, err := scrypt.Key([]byte(password), salt, n, r, p, len(stored))
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(derived, stored) == 1
}
