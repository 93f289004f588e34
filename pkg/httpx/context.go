package httpx

import (
	"context"

	"github.com/musterhq/muster/pkg/tokenx"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// ContextWithIdentity stores the authenticated identity for downstream
// handlers.
func ContextWithIdentity(ctx context.Context, id tokenx.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFromContext returns the identity injected by AuthnMiddleware.
func IdentityFromContext(ctx context.Context) (tokenx.Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(tokenx.Identity)
	return id, ok
}
