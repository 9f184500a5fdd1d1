package environment

import "context"

// Environment represents the application environment. It gates, among
// other things, how much detail system-error messages expose to callers.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Parse normalizes an environment string, accepting the common short
// forms. Unknown values default to development so local mistakes surface
// loudly rather than silently hiding error detail.
func Parse(s string) Environment {
	switch s {
	case string(Production), "prod":
		return Production
	case string(Staging), "stage":
		return Staging
	default:
		return Development
	}
}

type contextKey struct{}

// WithContext attaches the environment to the context.
func WithContext(ctx context.Context, env Environment) context.Context {
	return context.WithValue(ctx, contextKey{}, env)
}

// FromContext retrieves the environment from the context, defaulting to
// development when absent.
func FromContext(ctx context.Context) Environment {
	if ctx == nil {
		return Development
	}
	if env, ok := ctx.Value(contextKey{}).(Environment); ok {
		return env
	}
	return Development
}

// IsProduction reports whether the context's environment is production.
func IsProduction(ctx context.Context) bool {
	return FromContext(ctx) == Production
}
