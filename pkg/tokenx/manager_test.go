package tokenx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecrets = Secrets{
	Access:  "access-secret-for-tests-0123",
	Refresh: "refresh-secret-for-tests-0123",
}

func newTestManager() *Manager {
	return NewManager(testSecrets, DefaultAccessTTL, DefaultRefreshTTL)
}

func testIdentity() Identity {
	return Identity{ID: "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", Name: "alice", Role: RoleUser}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	pair, err := m.IssuePair(testIdentity())
	require.NoError(t, err)

	access, err := m.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", access.Sub)
	require.Equal(t, "alice", access.Name)
	require.Equal(t, RoleUser, access.Role)
	require.Equal(t, KindAccess, access.Type)
	require.Equal(t, pair.AccessExpiresAt, access.Exp)
	require.NotEmpty(t, access.Jti)

	refresh, err := m.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, KindRefresh, refresh.Type)
	require.Equal(t, pair.RefreshExpiresAt, refresh.Exp)

	// Same issuance, independent lifetimes and jtis.
	require.Equal(t, access.Iat, refresh.Iat)
	require.Greater(t, refresh.Exp, access.Exp)
	require.NotEqual(t, access.Jti, refresh.Jti)
}

func TestKindIsolation(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	pair, err := m.IssuePair(testIdentity())
	require.NoError(t, err)

	// Both tokens are validly signed for their own kind, but neither may
	// stand in for the other.
	_, err = m.VerifyAccess(pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.VerifyRefresh(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperDetection(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	pair, err := m.IssuePair(testIdentity())
	require.NoError(t, err)

	parts := strings.Split(pair.AccessToken, ".")
	require.Len(t, parts, 3)

	t.Run("flipped signature char", func(t *testing.T) {
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		tampered := parts[0] + "." + parts[1] + "." + string(sig)

		_, err := m.VerifyAccess(tampered)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("flipped payload char", func(t *testing.T) {
		body := []byte(parts[1])
		if body[0] == 'A' {
			body[0] = 'B'
		} else {
			body[0] = 'A'
		}
		tampered := parts[0] + "." + string(body) + "." + parts[2]

		_, err := m.VerifyAccess(tampered)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestMalformedTokensRejected(t *testing.T) {
	t.Parallel()

	m := newTestManager()

	for name, raw := range map[string]string{
		"empty":           "",
		"one segment":     "abc",
		"two segments":    "abc.def",
		"four segments":   "a.b.c.d",
		"empty signature": "a.b.",
		"empty payload":   "a..c",
		"not a token":     "definitely not a token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.VerifyAccess(raw)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

// forge signs an arbitrary payload with the manager's own secrets so expiry
// and structural checks can be exercised past the signature check.
func forge(t *testing.T, m *Manager, p Payload) string {
	t.Helper()
	raw, err := m.encode(p)
	require.NoError(t, err)
	return raw
}

func TestExpiryEnforcement(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	now := time.Now().UTC().Unix()

	base := Payload{
		Sub:  "u1",
		Name: "alice",
		Role: RoleUser,
		Type: KindAccess,
		Jti:  "jti-1",
	}

	t.Run("expired token fails", func(t *testing.T) {
		p := base
		p.Iat = now - 120
		p.Exp = now - 60

		_, err := m.VerifyAccess(forge(t, m, p))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("exp exactly now fails", func(t *testing.T) {
		p := base
		p.Iat = now - 60
		p.Exp = now

		_, err := m.VerifyAccess(forge(t, m, p))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("one second in the future passes", func(t *testing.T) {
		p := base
		p.Iat = now - 60
		p.Exp = now + 1

		got, err := m.VerifyAccess(forge(t, m, p))
		require.NoError(t, err)
		require.Equal(t, "u1", got.Sub)
	})
}

func TestStructuralValidation(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	now := time.Now().UTC().Unix()

	valid := Payload{
		Sub:  "u1",
		Name: "alice",
		Role: RoleUser,
		Type: KindAccess,
		Iat:  now,
		Exp:  now + 60,
	}

	mutate := map[string]func(p *Payload){
		"missing sub":       func(p *Payload) { p.Sub = "" },
		"missing name":      func(p *Payload) { p.Name = "" },
		"unrecognised role": func(p *Payload) { p.Role = "SUPERUSER" },
		"missing type":      func(p *Payload) { p.Type = "" },
		"missing iat":       func(p *Payload) { p.Iat = 0 },
		"missing exp":       func(p *Payload) { p.Exp = 0 },
	}

	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			p := valid
			fn(&p)

			_, err := m.VerifyAccess(forge(t, m, p))
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	// Sanity: the unmutated payload verifies.
	_, err := m.VerifyAccess(forge(t, m, valid))
	require.NoError(t, err)
}

func TestCrossSecretRejection(t *testing.T) {
	t.Parallel()

	// A token signed under different secret material must not verify even
	// if otherwise perfectly formed.
	other := NewManager(Secrets{
		Access:  "a-completely-different-secret",
		Refresh: "another-different-secret-too",
	}, DefaultAccessTTL, DefaultRefreshTTL)

	pair, err := other.IssuePair(testIdentity())
	require.NoError(t, err)

	m := newTestManager()
	_, err = m.VerifyAccess(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIdentityHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	id := testIdentity()
	encoded, err := EncodeIdentity(id)
	require.NoError(t, err)

	decoded, err := DecodeIdentity(encoded)
	require.NoError(t, err)
	require.Equal(t, id, decoded)
}

func TestIdentityHeaderValidation(t *testing.T) {
	t.Parallel()

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := DecodeIdentity("!!not base64!!")
		require.ErrorIs(t, err, ErrInvalidIdentity)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		encoded, err := EncodeIdentity(Identity{ID: "u1"})
		require.NoError(t, err)

		_, err = DecodeIdentity(encoded)
		require.ErrorIs(t, err, ErrInvalidIdentity)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		encoded, err := EncodeIdentity(Identity{ID: "u1", Name: "alice", Role: "WIZARD"})
		require.NoError(t, err)

		_, err = DecodeIdentity(encoded)
		require.ErrorIs(t, err, ErrInvalidIdentity)
	})
}
