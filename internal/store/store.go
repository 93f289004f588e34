package store

import (
	"context"
	"errors"

	"github.com/musterhq/muster/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Armies() Armies
	Units() Units

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back if fn returns
	// an error and committing otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername looks a user up case-insensitively; login depends
	// on this matching "Alice" to the stored "alice".
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the stored hash record and bumps updated_at.
	// Used by password change and the one-time admin hash migration.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// DeleteUser cascades to armies and units (per schema).
	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Armies interface {
	CreateArmy(ctx context.Context, a domain.Army) error
	GetArmyByID(ctx context.Context, id string) (domain.Army, error)

	// ListArmiesByOwner returns a player's rosters, newest first.
	ListArmiesByOwner(ctx context.Context, ownerID string) ([]domain.Army, error)

	// ListArmies returns every roster in the system (admin view).
	ListArmies(ctx context.Context) ([]domain.Army, error)

	UpdateArmy(ctx context.Context, a domain.Army) error
	DeleteArmy(ctx context.Context, id string) error
}

type Units interface {
	CreateUnit(ctx context.Context, u domain.Unit) error
	GetUnitByID(ctx context.Context, id string) (domain.Unit, error)
	ListUnitsByArmy(ctx context.Context, armyID string) ([]domain.Unit, error)
	UpdateUnit(ctx context.Context, u domain.Unit) error
	DeleteUnit(ctx context.Context, id string) error
}
