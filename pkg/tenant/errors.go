package tenant

import "errors"

var (
	// ErrMissingAPIKey is returned when no credential was supplied.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidAPIKey is returned when the credential backend rejects
	// the key or returns an unusable record.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrBackendUnavailable is returned when the credential backend
	// cannot be reached. Maps to service-unavailable, not unauthorized.
	ErrBackendUnavailable = errors.New("credential backend unavailable")

	// ErrNoScopeInContext is returned when a handler expects a resolved
	// tenant scope but none was attached to the request context.
	ErrNoScopeInContext = errors.New("no tenant scope in context")
)
