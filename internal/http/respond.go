// Package http wires the muster API surface: JSON handlers over the service
// layer, routed through a ServeMux with per-route middleware.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/musterhq/muster/internal/domain"
	"github.com/musterhq/muster/internal/service"
	"github.com/musterhq/muster/pkg/cryptox"
	"github.com/musterhq/muster/pkg/httpx"
	"github.com/musterhq/muster/pkg/mustersdk"
	"github.com/musterhq/muster/pkg/slogx"
)

const maxBodyBytes = 1 << 20

// decodeJSON parses a JSON request body into dst, capping the body size.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

// writeServiceError maps service-layer errors onto HTTP responses. Unknown
// errors are logged and reported as an opaque 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var policyErr *cryptox.PolicyError

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRosterNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrUsernameTaken):
		httpx.WriteError(w, http.StatusConflict, "username already taken")
	case errors.Is(err, service.ErrInvalidRoster),
		errors.Is(err, service.ErrInvalidUnit):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &policyErr):
		httpx.WriteError(w, http.StatusBadRequest, policyErr.Error())
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func toUserResponse(u domain.User) mustersdk.UserResponse {
	return mustersdk.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Role:     string(u.Role),
	}
}

func toArmyResponse(a domain.Army) mustersdk.ArmyResponse {
	return mustersdk.ArmyResponse{
		ID:          a.ID,
		OwnerID:     a.OwnerID,
		Name:        a.Name,
		Faction:     a.Faction,
		PointsLimit: a.PointsLimit,
		Goal:        a.Goal,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toArmyResponses(armies []domain.Army) []mustersdk.ArmyResponse {
	out := make([]mustersdk.ArmyResponse, 0, len(armies))
	for _, a := range armies {
		out = append(out, toArmyResponse(a))
	}
	return out
}

func toUnitResponse(u domain.Unit) mustersdk.UnitResponse {
	return mustersdk.UnitResponse{
		ID:        u.ID,
		ArmyID:    u.ArmyID,
		Name:      u.Name,
		Points:    u.Points,
		Weapons:   u.Weapons,
		Perks:     u.Perks,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUnitResponses(units []domain.Unit) []mustersdk.UnitResponse {
	out := make([]mustersdk.UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, toUnitResponse(u))
	}
	return out
}
