package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/musterhq/muster/internal/service"
	"github.com/musterhq/muster/internal/store"
	"github.com/musterhq/muster/pkg/httpx"
	"github.com/musterhq/muster/pkg/slogx"
	"github.com/musterhq/muster/pkg/tokenx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	tokens        *tokenx.Manager
	accessTTL     time.Duration
	refreshTTL    time.Duration
	secureCookies bool

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService *service.AuthService
	UserService *service.UserService
	ArmyService *service.ArmyService
}

func NewRouter(
	tokens *tokenx.Manager,
	accessTTL, refreshTTL time.Duration,
	secureCookies bool,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		tokens:        tokens,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		store:         st,
		logger:        logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerArmies()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	authn := httpx.AuthnMiddleware(r.tokens)

	// Credential endpoints get the strict limit: these are the brute-force
	// targets.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(&LoginHandler{
			Auth:          r.AuthService,
			AccessTTL:     r.accessTTL,
			RefreshTTL:    r.refreshTTL,
			SecureCookies: r.secureCookies,
		},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(&RefreshHandler{
			Auth:          r.AuthService,
			AccessTTL:     r.accessTTL,
			RefreshTTL:    r.refreshTTL,
			SecureCookies: r.secureCookies,
		},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(&LogoutHandler{SecureCookies: r.secureCookies},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(&MeHandler{Users: r.UserService},
			authn,
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/password",
		httpx.Chain(&ChangePasswordHandler{Users: r.UserService},
			authn,
			httpx.RateLimitBySubject(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	authn := httpx.AuthnMiddleware(r.tokens)

	r.Mux.Handle("POST /v1/users",
		httpx.Chain(&CreateUserHandler{Users: r.UserService},
			authn,
			httpx.RequireAdmin(),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("DELETE /v1/users/{id}",
		httpx.Chain(&DeleteUserHandler{Users: r.UserService},
			authn,
			httpx.RequireAdmin(),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerArmies() {
	authn := httpx.AuthnMiddleware(r.tokens)
	limit := httpx.RateLimitBySubject(httpx.ModerateLimit)

	armies := &ArmiesHandler{Armies: r.ArmyService}
	units := &UnitsHandler{Armies: r.ArmyService}

	r.Mux.Handle("POST /v1/armies", httpx.Chain(http.HandlerFunc(armies.Create), authn, limit))
	r.Mux.Handle("GET /v1/armies", httpx.Chain(http.HandlerFunc(armies.List), authn, limit))
	r.Mux.Handle("GET /v1/armies/{id}", httpx.Chain(http.HandlerFunc(armies.Get), authn, limit))
	r.Mux.Handle("PUT /v1/armies/{id}", httpx.Chain(http.HandlerFunc(armies.Update), authn, limit))
	r.Mux.Handle("DELETE /v1/armies/{id}", httpx.Chain(http.HandlerFunc(armies.Delete), authn, limit))

	r.Mux.Handle("POST /v1/armies/{id}/units", httpx.Chain(http.HandlerFunc(units.Create), authn, limit))
	r.Mux.Handle("GET /v1/armies/{id}/units", httpx.Chain(http.HandlerFunc(units.List), authn, limit))
	r.Mux.Handle("PUT /v1/armies/{id}/units/{unitID}", httpx.Chain(http.HandlerFunc(units.Update), authn, limit))
	r.Mux.Handle("DELETE /v1/armies/{id}/units/{unitID}", httpx.Chain(http.HandlerFunc(units.Delete), authn, limit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
