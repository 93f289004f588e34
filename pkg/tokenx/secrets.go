package tokenx

import (
	"fmt"
	"os"
	"strings"
)

// MinSecretLength is the minimum number of bytes a usable signing secret
// must have. Shorter values are treated the same as absent ones.
const MinSecretLength = 16

// devPlaceholderSecret keeps local development working without any env
// setup. It is only ever used outside production mode.
const devPlaceholderSecret = "muster-dev-secret-do-not-deploy"

// Secrets holds the per-kind signing secrets. It is resolved exactly once at
// process start and passed by value; nothing mutates it afterwards.
type Secrets struct {
	Access  string
	Refresh string
}

// ResolveSecrets loads the access and refresh secrets from the environment.
// Resolution order per kind: the dedicated variable, then the shared
// AUTH_SECRET fallback, then (non-production only) a hard-coded development
// placeholder. In production a missing or too-short secret is a fatal
// configuration error.
func ResolveSecrets(production bool) (Secrets, error) {
	shared := os.Getenv("AUTH_SECRET")

	access, err := resolveSecret(os.Getenv("AUTH_ACCESS_SECRET"), shared, "AUTH_ACCESS_SECRET", production)
	if err != nil {
		return Secrets{}, err
	}
	refresh, err := resolveSecret(os.Getenv("AUTH_REFRESH_SECRET"), shared, "AUTH_REFRESH_SECRET", production)
	if err != nil {
		return Secrets{}, err
	}

	return Secrets{Access: access, Refresh: refresh}, nil
}

func resolveSecret(dedicated, shared, name string, production bool) (string, error) {
	if usable(dedicated) {
		return dedicated, nil
	}
	if usable(shared) {
		return shared, nil
	}
	if production {
		return "", fmt.Errorf(
			"tokenx: no usable signing secret for %s: set it (or AUTH_SECRET) to at least %d characters",
			name, MinSecretLength,
		)
	}
	return devPlaceholderSecret, nil
}

func usable(secret string) bool {
	return len(strings.TrimSpace(secret)) >= MinSecretLength
}

// forKind picks the secret matching a token kind. Access and refresh tokens
// are never cross-signed.
func (s Secrets) forKind(kind Kind) string {
	if kind == KindRefresh {
		return s.Refresh
	}
	return s.Access
}
