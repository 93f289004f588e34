package http

import (
	"net/http"

	"github.com/musterhq/muster/internal/service"
	"github.com/musterhq/muster/pkg/httpx"
	"github.com/musterhq/muster/pkg/mustersdk"
	"github.com/musterhq/muster/pkg/tokenx"
)

// CreateUserHandler implements POST /v1/users (admin only).
type CreateUserHandler struct {
	Users *service.UserService
}

func (h *CreateUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req mustersdk.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	role := tokenx.Role(req.Role)
	if req.Role == "" {
		role = tokenx.RoleUser
	}
	if !role.Valid() {
		httpx.WriteError(w, http.StatusBadRequest, "unknown role")
		return
	}

	u, err := h.Users.CreateUser(r.Context(), req.Username, req.Password, role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

// DeleteUserHandler implements DELETE /v1/users/{id} (admin only). Rosters
// and units owned by the account cascade away with it.
type DeleteUserHandler struct {
	Users *service.UserService
}

func (h *DeleteUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePasswordHandler implements POST /v1/auth/password for the signed-in
// account.
type ChangePasswordHandler struct {
	Users *service.UserService
}

func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	var req mustersdk.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Users.ChangePassword(r.Context(), id.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
