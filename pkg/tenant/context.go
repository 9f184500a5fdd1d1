package tenant

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithContext attaches a resolved tenant scope to the context.
func WithContext(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, contextKey{}, scope)
}

// FromContext retrieves the tenant scope from the context.
func FromContext(ctx context.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	scope, ok := ctx.Value(contextKey{}).(Scope)
	return scope, ok
}

// MustFromContext retrieves the scope or returns ErrNoScopeInContext.
// Used by handlers mounted behind the auth middleware.
func MustFromContext(ctx context.Context) (Scope, error) {
	scope, ok := FromContext(ctx)
	if !ok || scope.IsZero() {
		return Scope{}, ErrNoScopeInContext
	}
	return scope, nil
}

// LogExtractor exposes the resolved scope as a slog attribute for the
// logger factory's context extractors.
func LogExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		scope, ok := FromContext(ctx)
		if !ok || scope.IsZero() {
			return slog.Attr{}, false
		}
		return slog.Group("tenant",
			slog.Int64("organization_id", scope.OrganizationID),
			slog.Int64("project_id", scope.ProjectID),
		), true
	}
}
