package service

import (
	"context"
	"errors"

	"github.com/musterhq/muster/internal/domain"
	"github.com/musterhq/muster/internal/store"
	"github.com/musterhq/muster/pkg/cryptox"
	"github.com/musterhq/muster/pkg/idx"
	"github.com/musterhq/muster/pkg/tokenx"
)

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrUserNotFound  = errors.New("user not found")
)

// UserService manages accounts. Creation and deletion are admin operations;
// password changes are self-service.
type UserService struct {
	Store store.Store
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// CreateUser registers a new account. The password must pass the policy
// (*cryptox.PolicyError otherwise); the username must be unique even under
// case folding.
func (s *UserService) CreateUser(ctx context.Context, username, password string, role tokenx.Role) (domain.User, error) {
	if username == "" {
		return domain.User{}, errors.New("username is required")
	}
	if !role.Valid() {
		return domain.User{}, errors.New("unknown role")
	}

	record, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: record,
		Role:         role,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	return u, nil
}

// ChangePassword verifies the current password and replaces the stored
// record. The current-password check fails uniformly so the endpoint cannot
// be used to probe stored record state.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if !verifyPassword(ctx, current, u.PasswordHash) {
		return ErrInvalidCredentials
	}

	record, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}

	return s.Store.Users().UpdatePasswordHash(ctx, u.ID, record)
}

// DeleteUser removes an account; armies and units cascade in the schema.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	err := s.Store.Users().DeleteUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
