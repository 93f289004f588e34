package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/musterhq/muster/internal/service"
	"github.com/musterhq/muster/internal/store"
	"github.com/musterhq/muster/internal/store/drivers/sqlite"
	"github.com/musterhq/muster/pkg/httpx"
	"github.com/musterhq/muster/pkg/mustersdk"
	"github.com/musterhq/muster/pkg/tokenx"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router *Router
	store  store.Store
	users  *service.UserService

	// Each request gets a fresh fake client IP so the strict login limit
	// never trips across subtests.
	nextIP int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	tokens := tokenx.NewManager(tokenx.Secrets{
		Access:  "unit-test-access-secret",
		Refresh: "unit-test-refresh-secret",
	}, 15*time.Minute, 30*24*time.Hour)

	users := &service.UserService{Store: st}

	r := NewRouter(tokens, 15*time.Minute, 30*24*time.Hour, false, "test", st, slog.Default())
	r.AuthService = &service.AuthService{Store: st, Tokens: tokens}
	r.UserService = users
	r.ArmyService = &service.ArmyService{Store: st}
	r.ApplyRoutes()

	return &testEnv{router: r, store: st, users: users}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	e.nextIP++
	req.RemoteAddr = fmt.Sprintf("10.0.%d.%d:4242", e.nextIP/255, e.nextIP%255)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, username, password string) []*http.Cookie {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/v1/auth/login", mustersdk.LoginRequest{
		Username: username,
		Password: password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Result().Cookies()
}

func (e *testEnv) seedUser(t *testing.T, username string, role tokenx.Role) {
	t.Helper()
	_, err := e.users.CreateUser(context.Background(), username, "Secret123", role)
	require.NoError(t, err)
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", tokenx.RoleUser)

	t.Run("success sets the cookie pair", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/login", mustersdk.LoginRequest{
			Username: "Alice",
			Password: "Secret123",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		var body mustersdk.SessionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "alice", body.User.Username)
		require.Equal(t, "USER", body.User.Role)
		require.Greater(t, body.RefreshExpiresAt, body.AccessExpiresAt)

		cookies := rec.Result().Cookies()
		access := cookieByName(cookies, httpx.CookieAccess)
		require.NotNil(t, access)
		require.True(t, access.HttpOnly)
		require.Equal(t, http.SameSiteLaxMode, access.SameSite)
		require.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)
		require.NotNil(t, cookieByName(cookies, httpx.CookieRefresh))
	})

	t.Run("wrong password and unknown user answer identically", func(t *testing.T) {
		wrongPass := env.do(t, http.MethodPost, "/v1/auth/login", mustersdk.LoginRequest{
			Username: "alice", Password: "Wrong1234",
		}, nil)
		noUser := env.do(t, http.MethodPost, "/v1/auth/login", mustersdk.LoginRequest{
			Username: "nobody", Password: "Secret123",
		}, nil)

		require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
		require.Equal(t, http.StatusUnauthorized, noUser.Code)
		require.Equal(t, wrongPass.Body.String(), noUser.Body.String())
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader([]byte("{not json")))
		req.RemoteAddr = "10.99.0.1:4242"
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("repeated attempts from one IP are rate limited", func(t *testing.T) {
		req := func() *httptest.ResponseRecorder {
			var buf bytes.Buffer
			require.NoError(t, json.NewEncoder(&buf).Encode(mustersdk.LoginRequest{
				Username: "alice", Password: "Wrong1234",
			}))
			r := httptest.NewRequest(http.MethodPost, "/v1/auth/login", &buf)
			r.RemoteAddr = "10.99.99.99:4242"
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, r)
			return rec
		}

		for range 5 {
			require.Equal(t, http.StatusUnauthorized, req().Code)
		}
		require.Equal(t, http.StatusTooManyRequests, req().Code)
	})
}

func TestSessionEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", tokenx.RoleUser)
	cookies := env.login(t, "alice", "Secret123")

	t.Run("me returns the signed-in account", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/auth/me", nil, cookies)
		require.Equal(t, http.StatusOK, rec.Code)

		var body mustersdk.UserResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "alice", body.Username)
	})

	t.Run("me without a session is 401", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/auth/me", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh rotates the cookie pair", func(t *testing.T) {
		refresh := cookieByName(cookies, httpx.CookieRefresh)
		require.NotNil(t, refresh)

		rec := env.do(t, http.MethodPost, "/v1/auth/refresh", nil, []*http.Cookie{refresh})
		require.Equal(t, http.StatusOK, rec.Code)

		rotated := rec.Result().Cookies()
		require.NotNil(t, cookieByName(rotated, httpx.CookieAccess))
		require.NotNil(t, cookieByName(rotated, httpx.CookieRefresh))

		var body mustersdk.SessionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "alice", body.User.Username)
	})

	t.Run("refresh with the access cookie is 401", func(t *testing.T) {
		access := cookieByName(cookies, httpx.CookieAccess)
		require.NotNil(t, access)

		rec := env.do(t, http.MethodPost, "/v1/auth/refresh", nil, []*http.Cookie{
			{Name: httpx.CookieRefresh, Value: access.Value},
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("logout expires both cookies", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/logout", nil, cookies)
		require.Equal(t, http.StatusNoContent, rec.Code)

		for _, c := range rec.Result().Cookies() {
			require.Empty(t, c.Value)
			require.Negative(t, c.MaxAge)
		}
	})

	t.Run("change password then login with the new one", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/password", mustersdk.ChangePasswordRequest{
			CurrentPassword: "Secret123",
			NewPassword:     "Fresher456",
		}, cookies)
		require.Equal(t, http.StatusNoContent, rec.Code)

		old := env.do(t, http.MethodPost, "/v1/auth/login", mustersdk.LoginRequest{
			Username: "alice", Password: "Secret123",
		}, nil)
		require.Equal(t, http.StatusUnauthorized, old.Code)

		env.login(t, "alice", "Fresher456")
	})
}

func TestUserAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "warmaster", tokenx.RoleAdmin)
	env.seedUser(t, "alice", tokenx.RoleUser)

	adminCookies := env.login(t, "warmaster", "Secret123")
	userCookies := env.login(t, "alice", "Secret123")

	t.Run("admin creates an account", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users", mustersdk.CreateUserRequest{
			Username: "bob",
			Password: "Secret123",
			Role:     "USER",
		}, adminCookies)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body mustersdk.UserResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "bob", body.Username)
		require.NotEmpty(t, body.ID)
	})

	t.Run("duplicate username is a 409", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users", mustersdk.CreateUserRequest{
			Username: "ALICE",
			Password: "Secret123",
		}, adminCookies)
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("weak password is a 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users", mustersdk.CreateUserRequest{
			Username: "carol",
			Password: "letters",
		}, adminCookies)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("regular users are forbidden", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users", mustersdk.CreateUserRequest{
			Username: "mallory",
			Password: "Secret123",
		}, userCookies)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin deletes an account", func(t *testing.T) {
		created := env.do(t, http.MethodPost, "/v1/users", mustersdk.CreateUserRequest{
			Username: "temp",
			Password: "Secret123",
		}, adminCookies)
		require.Equal(t, http.StatusCreated, created.Code)

		var body mustersdk.UserResponse
		require.NoError(t, json.NewDecoder(created.Body).Decode(&body))

		rec := env.do(t, http.MethodDelete, "/v1/users/"+body.ID, nil, adminCookies)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodDelete, "/v1/users/"+body.ID, nil, adminCookies)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestArmyEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", tokenx.RoleUser)
	env.seedUser(t, "bob", tokenx.RoleUser)

	alice := env.login(t, "alice", "Secret123")
	bob := env.login(t, "bob", "Secret123")

	var army mustersdk.ArmyResponse

	t.Run("create", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/armies", mustersdk.ArmyRequest{
			Name:        "Iron Fangs",
			Faction:     "Wolfkin",
			PointsLimit: 2000,
			Goal:        "win the winter campaign",
		}, alice)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&army))
		require.Equal(t, "Iron Fangs", army.Name)
	})

	t.Run("owner-scoped visibility", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/armies/"+army.ID, nil, alice)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/v1/armies/"+army.ID, nil, bob)
		require.Equal(t, http.StatusNotFound, rec.Code)

		rec = env.do(t, http.MethodGet, "/v1/armies", nil, bob)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []mustersdk.ArmyResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
		require.Empty(t, list)
	})

	t.Run("units lifecycle", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/armies/"+army.ID+"/units", mustersdk.UnitRequest{
			Name:    "Fang Guard",
			Points:  120,
			Weapons: []string{"halberd", "shield"},
		}, alice)
		require.Equal(t, http.StatusCreated, rec.Code)

		var unit mustersdk.UnitResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&unit))
		require.Equal(t, []string{"halberd", "shield"}, unit.Weapons)

		rec = env.do(t, http.MethodPut, "/v1/armies/"+army.ID+"/units/"+unit.ID, mustersdk.UnitRequest{
			Name:   "Fang Guard Veterans",
			Points: 150,
		}, alice)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodDelete, "/v1/armies/"+army.ID+"/units/"+unit.ID, nil, alice)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, "/v1/armies/"+army.ID+"/units", nil, alice)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []mustersdk.UnitResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
		require.Empty(t, list)
	})

	t.Run("update and delete", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/v1/armies/"+army.ID, mustersdk.ArmyRequest{
			Name:        "Iron Fangs",
			Faction:     "Wolfkin",
			PointsLimit: 2500,
		}, alice)
		require.Equal(t, http.StatusOK, rec.Code)

		var updated mustersdk.ArmyResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
		require.Equal(t, 2500, updated.PointsLimit)

		rec = env.do(t, http.MethodDelete, "/v1/armies/"+army.ID, nil, bob)
		require.Equal(t, http.StatusNotFound, rec.Code)

		rec = env.do(t, http.MethodDelete, "/v1/armies/"+army.ID, nil, alice)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestSystemEndpoints(t *testing.T) {
	env := newTestEnv(t)

	t.Run("livez", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/livez", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body mustersdk.HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "ok", body.Status)
	})

	t.Run("readyz reports the database", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/readyz", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body mustersdk.HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.NotNil(t, body.Checks)
		require.Equal(t, "ok", body.Checks.Database)
	})
}
