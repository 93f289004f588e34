// Package tokenx implements the compact signed-token format used for
// stateless authentication: URL-safe base64 JSON segments in the shape
// header.payload.signature, integrity-protected with HMAC-SHA256.
//
// The package deliberately avoids any third-party token library; the wire
// format is a protocol contract and every byte of it is produced here.
// Verification failures are uniform: malformed, tampered, expired and
// wrong-kind tokens are all reported as ErrInvalidToken so callers cannot
// leak the reason to whoever presented the token.
package tokenx

import (
	"errors"
	"strings"
	"time"

	"github.com/musterhq/muster/pkg/idx"
)

// Default token lifetimes, overridable via AUTH_ACCESS_TTL_SEC and
// AUTH_REFRESH_TTL_SEC.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

var (
	// ErrInvalidToken is the uniform verification failure. It covers bad
	// structure, bad signature, wrong kind and expiry alike, on purpose.
	ErrInvalidToken = errors.New("tokenx: invalid token")

	// ErrInvalidIdentity reports a malformed identity header value.
	ErrInvalidIdentity = errors.New("tokenx: invalid identity header")
)

// Pair is a matched access/refresh token issuance for one principal. The
// two tokens share sub/name/role/iat but have independent exp and jti. The
// manager keeps no reference to a pair after returning it.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  int64
	RefreshExpiresAt int64
}

// Manager issues and verifies token pairs. It is safe for concurrent use:
// all state is immutable after construction.
type Manager struct {
	secrets    Secrets
	accessTTL  time.Duration
	refreshTTL time.Duration

	now func() time.Time
}

// NewManager builds a Manager from resolved secrets and the two TTLs.
// Non-positive TTLs fall back to the defaults.
func NewManager(secrets Secrets, accessTTL, refreshTTL time.Duration) *Manager {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Manager{
		secrets:    secrets,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair mints an access/refresh pair for an already-authenticated
// identity. Each token gets its own jti; each is signed with the secret for
// its own kind.
func (m *Manager) IssuePair(id Identity) (Pair, error) {
	iat := m.now().UTC().Unix()

	accessExp := iat + int64(m.accessTTL.Seconds())
	refreshExp := iat + int64(m.refreshTTL.Seconds())

	access, err := m.encode(Payload{
		Sub:  id.ID,
		Name: id.Name,
		Role: id.Role,
		Type: KindAccess,
		Iat:  iat,
		Exp:  accessExp,
		Jti:  idx.New().String(),
	})
	if err != nil {
		return Pair{}, err
	}

	refresh, err := m.encode(Payload{
		Sub:  id.ID,
		Name: id.Name,
		Role: id.Role,
		Type: KindRefresh,
		Iat:  iat,
		Exp:  refreshExp,
		Jti:  idx.New().String(),
	})
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccess checks raw as an access token and returns its payload, or
// ErrInvalidToken.
func (m *Manager) VerifyAccess(raw string) (*Payload, error) {
	return m.verify(raw, KindAccess)
}

// VerifyRefresh checks raw as a refresh token and returns its payload, or
// ErrInvalidToken.
func (m *Manager) VerifyRefresh(raw string) (*Payload, error) {
	return m.verify(raw, KindRefresh)
}

func (m *Manager) encode(p Payload) (string, error) {
	head, err := encodeSegment(header{Alg: "HS256", Typ: string(p.Type)})
	if err != nil {
		return "", err
	}
	body, err := encodeSegment(p)
	if err != nil {
		return "", err
	}

	signingInput := head + "." + body
	return signingInput + "." + sign(signingInput, m.secrets.forKind(p.Type)), nil
}

// verify walks the checks in order, short-circuiting to ErrInvalidToken at
// the first failure. The signature is checked before the payload is decoded
// so nothing unauthenticated is ever parsed into claims.
func (m *Manager) verify(raw string, kind Kind) (*Payload, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, ErrInvalidToken
	}

	signingInput := parts[0] + "." + parts[1]
	if !verifyMAC(signingInput, parts[2], m.secrets.forKind(kind)) {
		return nil, ErrInvalidToken
	}

	var p Payload
	if !decodeSegment(parts[1], &p) {
		return nil, ErrInvalidToken
	}
	if !p.structurallyValid() {
		return nil, ErrInvalidToken
	}
	if p.Type != kind {
		return nil, ErrInvalidToken
	}
	if p.Exp <= m.now().UTC().Unix() {
		return nil, ErrInvalidToken
	}

	return &p, nil
}

// EncodeIdentity packs a verified identity into a single header value using
// the codec, for handing across an internal trust boundary.
func EncodeIdentity(id Identity) (string, error) {
	return encodeSegment(id)
}

// DecodeIdentity reverses EncodeIdentity, applying the same structural
// validation as token verification: all fields present, role recognised.
func DecodeIdentity(value string) (Identity, error) {
	var id Identity
	if !decodeSegment(value, &id) {
		return Identity{}, ErrInvalidIdentity
	}
	if id.ID == "" || id.Name == "" || !id.Role.Valid() {
		return Identity{}, ErrInvalidIdentity
	}
	return id, nil
}
