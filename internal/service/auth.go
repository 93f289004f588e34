// Package service holds the application services sitting between HTTP
// handlers and the store: login, account management and roster management.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/musterhq/muster/internal/domain"
	"github.com/musterhq/muster/internal/store"
	"github.com/musterhq/muster/pkg/cryptox"
	"github.com/musterhq/muster/pkg/idx"
	"github.com/musterhq/muster/pkg/slogx"
	"github.com/musterhq/muster/pkg/tokenx"
)

// ErrInvalidCredentials is the uniform login failure: unknown username,
// wrong password and malformed stored record all map to it so the response
// never reveals which part failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyRecord is verified against when the username does not exist, so the
// request still pays the KDF cost and lookup misses are not observable by
// timing.
const dummyRecord = "scrypt$16384$8$1$c2FsdHNhbHRzYWx0c2FsdA==$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=="

// AuthService implements the credential flows: login, stateless refresh and
// first-run admin seeding.
type AuthService struct {
	Store  store.Store
	Tokens *tokenx.Manager

	// AdminUsername/AdminPassword come from the environment and drive both
	// first-run seeding and the legacy transport-hash login path.
	AdminUsername string
	AdminPassword string
}

// Login authenticates a username/password pair and mints a token pair. The
// username is matched case-insensitively. Any failure is ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.User, tokenx.Pair, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			verifyPassword(ctx, password, dummyRecord)
			return domain.User{}, tokenx.Pair{}, ErrInvalidCredentials
		}
		return domain.User{}, tokenx.Pair{}, err
	}

	if !s.credentialMatches(ctx, u, password) {
		return domain.User{}, tokenx.Pair{}, ErrInvalidCredentials
	}

	pair, err := s.Tokens.IssuePair(u.Identity())
	if err != nil {
		return domain.User{}, tokenx.Pair{}, err
	}

	log.Info("login succeeded", slog.String("user_id", u.ID))
	return u, pair, nil
}

// Refresh verifies a refresh token and mints a fresh pair for the identity
// it carries. No store lookup: the flow is fully stateless.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (tokenx.Identity, tokenx.Pair, error) {
	p, err := s.Tokens.VerifyRefresh(rawRefresh)
	if err != nil {
		return tokenx.Identity{}, tokenx.Pair{}, ErrInvalidCredentials
	}

	id := p.Identity()
	pair, err := s.Tokens.IssuePair(id)
	if err != nil {
		return tokenx.Identity{}, tokenx.Pair{}, err
	}
	return id, pair, nil
}

// credentialMatches checks the submitted password against the stored record.
// When the record check fails, the one configured admin account gets a
// second chance against ADMIN_PASSWORD under the fixed transport-hash
// comparison; a match silently upgrades the stored record to scrypt.
func (s *AuthService) credentialMatches(ctx context.Context, u domain.User, password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	if verifyPassword(ctx, password, u.PasswordHash) {
		return true
	}

	if s.AdminUsername == "" || s.AdminPassword == "" {
		return false
	}
	if !strings.EqualFold(u.Username, s.AdminUsername) {
		return false
	}
	if !cryptox.TransportHashEqual(cryptox.TransportHash(password), cryptox.TransportHash(s.AdminPassword)) {
		return false
	}

	s.upgradeSeededRecord(ctx, u, password)
	return true
}

// upgradeSeededRecord replaces a matched transport-hash record with a real
// scrypt record. Failure is non-fatal: the login still succeeds and the
// upgrade is retried on the next login.
func (s *AuthService) upgradeSeededRecord(ctx context.Context, u domain.User, password string) {
	log := slogx.FromContext(ctx)

	record, err := cryptox.HashPassword(password)
	if err != nil {
		log.Warn("seeded admin record not upgraded", slog.Any("error", err))
		return
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, u.ID, record); err != nil {
		log.Warn("seeded admin record not upgraded", slog.Any("error", err))
		return
	}

	log.Info("seeded admin record upgraded to scrypt", slog.String("user_id", u.ID))
}

// SeedAdmin creates the configured admin account on first run. It is a
// no-op unless the users table is empty and both ADMIN_USERNAME and
// ADMIN_PASSWORD are set. The account is stored with a transport-hash
// record; the first successful login upgrades it.
func (s *AuthService) SeedAdmin(ctx context.Context) error {
	if s.AdminUsername == "" || s.AdminPassword == "" {
		return nil
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     s.AdminUsername,
		PasswordHash: cryptox.TransportHash(s.AdminPassword),
		Role:         tokenx.RoleAdmin,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("seeded admin account", slog.String("username", u.Username))
	return nil
}

// verifyPassword runs the KDF off the calling goroutine so a cancelled
// request does not keep the handler pinned for the full derivation.
func verifyPassword(ctx context.Context, password, record string) bool {
	done := make(chan bool, 1)
	go func() {
		done <- cryptox.VerifyPassword(password, record)
	}()

	select {
	case ok := <-done:
		return ok
	case <-ctx.Done():
		return false
	}
}
