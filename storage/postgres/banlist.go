package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentguard/gateway/pkg/guardrail"
	"github.com/contentguard/gateway/pkg/pg"
	"github.com/contentguard/gateway/pkg/tenant"
)

// ErrNotFound is returned for rows that do not exist or are not visible
// to the caller's tenant scope.
var ErrNotFound = errors.New("record not found")

// BanListStore persists tenant-scoped ban lists. Implements
// guardrail.BanListStore for reference resolution at pipeline build time.
type BanListStore struct {
	db *pgxpool.Pool
}

func NewBanListStore(db *pgxpool.Pool) *BanListStore {
	if db == nil {
		panic("postgres: db pool cannot be nil")
	}
	return &BanListStore{db: db}
}

// Get fetches a ban list visible to the scope: owned by the tenant or
// public. Rows outside that visibility behave exactly like missing rows
// so callers cannot probe other tenants' ids.
func (s *BanListStore) Get(ctx context.Context, id uuid.UUID, scope tenant.Scope) (*guardrail.BanList, error) {
	const query = `
		SELECT id, name, description, banned_words, organization_id, project_id, domain, is_public
		FROM ban_list
		WHERE id = $1 AND (is_public OR (organization_id = $2 AND project_id = $3))`

	row := s.db.QueryRow(ctx, query, id, scope.OrganizationID, scope.ProjectID)

	var list guardrail.BanList
	err := row.Scan(
		&list.ID, &list.Name, &list.Description, &list.BannedWords,
		&list.Scope.OrganizationID, &list.Scope.ProjectID, &list.Domain, &list.IsPublic,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: ban list %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get ban list: %w", err)
	}
	return &list, nil
}

// List returns the tenant's own ban lists plus public ones.
func (s *BanListStore) List(ctx context.Context, scope tenant.Scope) ([]guardrail.BanList, error) {
	const query = `
		SELECT id, name, description, banned_words, organization_id, project_id, domain, is_public
		FROM ban_list
		WHERE is_public OR (organization_id = $1 AND project_id = $2)
		ORDER BY name`

	rows, err := s.db.Query(ctx, query, scope.OrganizationID, scope.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("list ban lists: %w", err)
	}
	defer rows.Close()

	var lists []guardrail.BanList
	for rows.Next() {
		var list guardrail.BanList
		if err := rows.Scan(
			&list.ID, &list.Name, &list.Description, &list.BannedWords,
			&list.Scope.OrganizationID, &list.Scope.ProjectID, &list.Domain, &list.IsPublic,
		); err != nil {
			return nil, fmt.Errorf("scan ban list: %w", err)
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

// Create inserts a ban list owned by the scope.
func (s *BanListStore) Create(ctx context.Context, list *guardrail.BanList) error {
	const query = `
		INSERT INTO ban_list (id, name, description, banned_words, organization_id, project_id, domain, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`

	if list.ID == uuid.Nil {
		list.ID = uuid.New()
	}
	_, err := s.db.Exec(ctx, query,
		list.ID, list.Name, list.Description, list.BannedWords,
		list.Scope.OrganizationID, list.Scope.ProjectID, list.Domain, list.IsPublic,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("create ban list: %w", err)
	}
	return nil
}

// Update rewrites a ban list the tenant owns. Public lists owned by other
// tenants are not updatable through this store.
func (s *BanListStore) Update(ctx context.Context, list *guardrail.BanList) error {
	const query = `
		UPDATE ban_list
		SET name = $2, description = $3, banned_words = $4, domain = $5, is_public = $6, updated_at = $7
		WHERE id = $1 AND organization_id = $8 AND project_id = $9`

	tag, err := s.db.Exec(ctx, query,
		list.ID, list.Name, list.Description, list.BannedWords, list.Domain, list.IsPublic,
		time.Now().UTC(), list.Scope.OrganizationID, list.Scope.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("update ban list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ban list %s", ErrNotFound, list.ID)
	}
	return nil
}

// Delete removes a ban list the tenant owns.
func (s *BanListStore) Delete(ctx context.Context, id uuid.UUID, scope tenant.Scope) error {
	const query = `DELETE FROM ban_list WHERE id = $1 AND organization_id = $2 AND project_id = $3`

	tag, err := s.db.Exec(ctx, query, id, scope.OrganizationID, scope.ProjectID)
	if err != nil {
		return fmt.Errorf("delete ban list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ban list %s", ErrNotFound, id)
	}
	return nil
}
