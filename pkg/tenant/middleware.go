package tenant

import (
	"errors"
	"net/http"
)

// APIKeyHeader carries the multitenant credential on guardrail requests.
const APIKeyHeader = "X-API-KEY"

// Middleware resolves the request's API key to a tenant scope and attaches
// it to the context. Requests without a resolvable scope never reach the
// handler: missing or rejected keys answer 401, an unreachable credential
// backend answers 503.
func Middleware(resolver Resolver, onError func(w http.ResponseWriter, status int, err error)) func(http.Handler) http.Handler {
	if onError == nil {
		onError = func(w http.ResponseWriter, status int, err error) {
			http.Error(w, err.Error(), status)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, err := resolver.Resolve(r.Context(), r.Header.Get(APIKeyHeader))
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, ErrBackendUnavailable) {
					status = http.StatusServiceUnavailable
				}
				onError(w, status, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), scope)))
		})
	}
}
