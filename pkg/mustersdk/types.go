// Package mustersdk holds the wire types of the muster HTTP API and a small
// cookie-aware client for them. Handlers and consumers share these types so
// the two cannot drift apart.
package mustersdk

import "time"

// ErrorResponse is the standard error envelope for every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LoginRequest carries the credentials for POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse describes an account as the API exposes it. Password material
// never appears here.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// SessionResponse is returned by login and refresh. The tokens themselves
// travel in httpOnly cookies; the body only reports who is signed in and
// until when.
type SessionResponse struct {
	User             UserResponse `json:"user"`
	AccessExpiresAt  int64        `json:"access_expires_at"`
	RefreshExpiresAt int64        `json:"refresh_expires_at"`
}

// CreateUserRequest registers a new account (admin only).
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ChangePasswordRequest rotates the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ArmyRequest carries the caller-settable roster fields for create/update.
type ArmyRequest struct {
	Name        string `json:"name"`
	Faction     string `json:"faction"`
	PointsLimit int    `json:"points_limit"`
	Goal        string `json:"goal"`
}

// ArmyResponse describes a roster.
type ArmyResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Faction     string    `json:"faction"`
	PointsLimit int       `json:"points_limit"`
	Goal        string    `json:"goal"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UnitRequest carries the caller-settable unit fields for create/update.
type UnitRequest struct {
	Name    string   `json:"name"`
	Points  int      `json:"points"`
	Weapons []string `json:"weapons,omitempty"`
	Perks   []string `json:"perks,omitempty"`
}

// UnitResponse describes a unit in a roster.
type UnitResponse struct {
	ID        string    `json:"id"`
	ArmyID    string    `json:"army_id"`
	Name      string    `json:"name"`
	Points    int       `json:"points"`
	Weapons   []string  `json:"weapons,omitempty"`
	Perks     []string  `json:"perks,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HealthChecks reports the state of each dependency probed by readyz.
type HealthChecks struct {
	Database string `json:"database"`
}

// HealthResponse is returned by the livez and readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
