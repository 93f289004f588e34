package http

import (
	"net/http"
	"time"

	"github.com/musterhq/muster/internal/service"
	"github.com/musterhq/muster/pkg/httpx"
	"github.com/musterhq/muster/pkg/mustersdk"
)

// LoginHandler implements POST /v1/auth/login. On success it sets the
// session cookie pair and returns the signed-in identity; every failure is
// the same opaque 401.
type LoginHandler struct {
	Auth          *service.AuthService
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SecureCookies bool
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req mustersdk.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	u, pair, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.SetSessionCookies(w, pair, h.AccessTTL, h.RefreshTTL, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, mustersdk.SessionResponse{
		User:             toUserResponse(u),
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	})
}

// RefreshHandler implements POST /v1/auth/refresh: trade the refresh cookie
// for a new cookie pair, statelessly.
type RefreshHandler struct {
	Auth          *service.AuthService
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SecureCookies bool
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(httpx.CookieRefresh)
	if err != nil || c.Value == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	id, pair, err := h.Auth.Refresh(r.Context(), c.Value)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.SetSessionCookies(w, pair, h.AccessTTL, h.RefreshTTL, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, mustersdk.SessionResponse{
		User: mustersdk.UserResponse{
			ID:       id.ID,
			Username: id.Name,
			Role:     string(id.Role),
		},
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	})
}

// LogoutHandler implements POST /v1/auth/logout by expiring both session
// cookies. Tokens are stateless so there is nothing to revoke server-side.
type LogoutHandler struct {
	SecureCookies bool
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.ClearSessionCookies(w, h.SecureCookies)
	w.WriteHeader(http.StatusNoContent)
}

// MeHandler implements GET /v1/auth/me, returning the account behind the
// current session from the store rather than echoing token claims.
type MeHandler struct {
	Users *service.UserService
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	u, err := h.Users.GetUserByID(r.Context(), id.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}
