package httpx

import (
	"net/http"
	"time"

	"github.com/musterhq/muster/pkg/tokenx"
)

// Session cookie names. The access cookie is read by AuthnMiddleware; the
// refresh cookie is only consumed by the refresh endpoint.
const (
	CookieAccess  = "access"
	CookieRefresh = "refresh"
)

// SetSessionCookies writes the access/refresh cookie pair. Both cookies are
// httpOnly, scoped to the whole site and sent with SameSite=Lax; secure
// marks them HTTPS-only in production deployments.
func SetSessionCookies(w http.ResponseWriter, pair tokenx.Pair, accessTTL, refreshTTL time.Duration, secure bool) {
	http.SetCookie(w, sessionCookie(CookieAccess, pair.AccessToken, int(accessTTL.Seconds()), secure))
	http.SetCookie(w, sessionCookie(CookieRefresh, pair.RefreshToken, int(refreshTTL.Seconds()), secure))
}

// ClearSessionCookies expires both session cookies immediately.
func ClearSessionCookies(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, sessionCookie(CookieAccess, "", -1, secure))
	http.SetCookie(w, sessionCookie(CookieRefresh, "", -1, secure))
}

func sessionCookie(name, value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
