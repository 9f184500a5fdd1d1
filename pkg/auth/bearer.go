// Package auth guards the management API (ban lists, validator configs)
// with a static bearer token. Guardrail execution endpoints use the
// multitenant API-key resolution from pkg/tenant instead.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned for missing or invalid bearer credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Config holds the expected token digest. The raw token never lives in
// configuration; only its sha256 hex digest does.
type Config struct {
	TokenSHA256 string `env:"AUTH_TOKEN_SHA256,required"`
}

// HashToken computes the hex sha256 digest used for comparison.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// BearerMiddleware rejects requests whose Authorization header does not
// carry the expected bearer token. Comparison is constant-time over the
// digest.
func BearerMiddleware(cfg Config, onError func(w http.ResponseWriter, status int, err error)) func(http.Handler) http.Handler {
	if onError == nil {
		onError = func(w http.ResponseWriter, status int, err error) {
			http.Error(w, err.Error(), status)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				onError(w, http.StatusUnauthorized, ErrUnauthorized)
				return
			}
			digest := HashToken(token)
			if subtle.ConstantTimeCompare([]byte(digest), []byte(cfg.TokenSHA256)) != 1 {
				onError(w, http.StatusUnauthorized, ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
