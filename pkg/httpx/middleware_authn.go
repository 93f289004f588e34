package httpx

import (
	"net/http"
	"strings"

	"github.com/musterhq/muster/pkg/slogx"
	"github.com/musterhq/muster/pkg/tokenx"
)

// AccessVerifier verifies a raw access token and returns its payload.
// *tokenx.Manager satisfies it.
type AccessVerifier interface {
	VerifyAccess(raw string) (*tokenx.Payload, error)
}

// IdentityHeader carries the verified identity across internal trust
// boundaries, e.g. to services sitting behind this one. It is stamped by
// AuthnMiddleware after verification; inbound values are overwritten.
const IdentityHeader = "X-Auth-Identity"

// AuthnMiddleware authenticates requests from the access session cookie,
// falling back to an Authorization bearer header for non-browser clients.
// Every failure mode produces the same 401 so callers learn nothing about
// why a token was rejected.
func AuthnMiddleware(v AccessVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := accessTokenFromRequest(r)
			if raw == "" {
				WriteError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			p, err := v.VerifyAccess(raw)
			if err != nil {
				log.Warn("access token rejected")
				WriteError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			id := p.Identity()

			// Stamp the identity header for anything proxied downstream;
			// never trust a caller-supplied value.
			r.Header.Del(IdentityHeader)
			if encoded, err := tokenx.EncodeIdentity(id); err == nil {
				r.Header.Set(IdentityHeader, encoded)
			}

			ctx = ContextWithIdentity(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieAccess); err == nil && c.Value != "" {
		return c.Value
	}
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	return ""
}
