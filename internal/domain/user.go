package domain

import (
	"time"

	"github.com/musterhq/muster/pkg/tokenx"
)

// User is a registered principal. The auth core reads it and, during the
// one-time admin hash migration, asks the store to replace PasswordHash; it
// never mutates anything else.
type User struct {
	ID           string
	Username     string
	PasswordHash string // self-describing scrypt record (or a seeded transport hash)
	Role         tokenx.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity projects the user into the shape tokens carry.
func (u User) Identity() tokenx.Identity {
	return tokenx.Identity{ID: u.ID, Name: u.Username, Role: u.Role}
}
