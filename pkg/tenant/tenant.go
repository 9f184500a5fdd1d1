package tenant

import "context"

// Scope is the (organization, project) pair isolating configuration and
// ban-lists between customers. Zero value means unscoped and is never a
// valid resolved scope.
type Scope struct {
	OrganizationID int64 `json:"organization_id"`
	ProjectID      int64 `json:"project_id"`
}

// IsZero reports whether the scope is unresolved.
func (s Scope) IsZero() bool {
	return s.OrganizationID == 0 && s.ProjectID == 0
}

// Resolver maps an API key to the tenant scope it belongs to.
// Implementations should return ErrInvalidAPIKey for credentials the
// backend rejects and ErrBackendUnavailable when the credential service
// cannot be reached, so callers can map them to 401 vs 503.
type Resolver interface {
	Resolve(ctx context.Context, apiKey string) (Scope, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, apiKey string) (Scope, error)

func (f ResolverFunc) Resolve(ctx context.Context, apiKey string) (Scope, error) {
	return f(ctx, apiKey)
}
