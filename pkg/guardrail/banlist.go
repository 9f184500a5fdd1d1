package guardrail

import (
	"context"

	"github.com/google/uuid"

	"github.com/contentguard/gateway/pkg/tenant"
)

// BanList is the stored word list a ban-list validator can reference
// instead of supplying words inline. Owned by a tenant, optionally public.
type BanList struct {
	ID          uuid.UUID
	Name        string
	Description string
	BannedWords []string
	Scope       tenant.Scope
	Domain      string
	IsPublic    bool
}

// BanListStore resolves ban-list references at pipeline build time. The
// lookup is scoped to the caller's tenant; implementations return a
// not-found error for lists that are neither owned by the tenant nor
// public.
type BanListStore interface {
	Get(ctx context.Context, id uuid.UUID, scope tenant.Scope) (*BanList, error)
}
