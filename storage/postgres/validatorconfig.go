package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentguard/gateway/pkg/guardrail"
	"github.com/contentguard/gateway/pkg/pg"
	"github.com/contentguard/gateway/pkg/tenant"
)

// ValidatorConfig is one stored validator configuration row. System
// columns live beside a JSONB params document; the two are merged into a
// guardrail.Descriptor when a pipeline is assembled.
type ValidatorConfig struct {
	ID        uuid.UUID        `json:"id"`
	Scope     tenant.Scope     `json:"scope"`
	Type      string           `json:"type"`
	Stage     guardrail.Stage  `json:"stage"`
	OnFail    guardrail.OnFail `json:"on_fail"`
	Config    map[string]any   `json:"config"`
	IsEnabled bool             `json:"is_enabled"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Descriptor converts the stored row into the build-time descriptor shape,
// rejecting params documents that shadow reserved system fields.
func (c ValidatorConfig) Descriptor() (guardrail.Descriptor, error) {
	if err := guardrail.ValidateParams(c.Config); err != nil {
		return guardrail.Descriptor{}, fmt.Errorf("config %s: %w", c.ID, err)
	}
	return guardrail.Descriptor{
		Kind:    c.Type,
		Stage:   c.Stage,
		OnFail:  c.OnFail,
		Enabled: c.IsEnabled,
		Params:  c.Config,
	}, nil
}

// ValidatorConfigStore persists per-tenant validator configurations.
// A tenant has at most one config per (type, stage) pair, enforced by a
// unique constraint.
type ValidatorConfigStore struct {
	db *pgxpool.Pool
}

func NewValidatorConfigStore(db *pgxpool.Pool) *ValidatorConfigStore {
	if db == nil {
		panic("postgres: db pool cannot be nil")
	}
	return &ValidatorConfigStore{db: db}
}

const validatorConfigColumns = `id, organization_id, project_id, type, stage, on_fail_action, config, is_enabled, created_at, updated_at`

func scanValidatorConfig(row interface{ Scan(...any) error }) (ValidatorConfig, error) {
	var c ValidatorConfig
	err := row.Scan(
		&c.ID, &c.Scope.OrganizationID, &c.Scope.ProjectID,
		&c.Type, &c.Stage, &c.OnFail, &c.Config, &c.IsEnabled,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// List returns the tenant's configs for a stage in stable order. Only
// enabled configs are returned when enabledOnly is set; the pipeline
// builder filters disabled descriptors anyway, this just avoids loading
// them.
func (s *ValidatorConfigStore) List(ctx context.Context, scope tenant.Scope, stage guardrail.Stage, enabledOnly bool) ([]ValidatorConfig, error) {
	query := `
		SELECT ` + validatorConfigColumns + `
		FROM validator_config
		WHERE organization_id = $1 AND project_id = $2 AND stage = $3`
	if enabledOnly {
		query += ` AND is_enabled`
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.Query(ctx, query, scope.OrganizationID, scope.ProjectID, stage)
	if err != nil {
		return nil, fmt.Errorf("list validator configs: %w", err)
	}
	defer rows.Close()

	var configs []ValidatorConfig
	for rows.Next() {
		c, err := scanValidatorConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan validator config: %w", err)
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// Get fetches one config owned by the scope.
func (s *ValidatorConfigStore) Get(ctx context.Context, id uuid.UUID, scope tenant.Scope) (ValidatorConfig, error) {
	query := `
		SELECT ` + validatorConfigColumns + `
		FROM validator_config
		WHERE id = $1 AND organization_id = $2 AND project_id = $3`

	c, err := scanValidatorConfig(s.db.QueryRow(ctx, query, id, scope.OrganizationID, scope.ProjectID))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return ValidatorConfig{}, fmt.Errorf("%w: validator config %s", ErrNotFound, id)
		}
		return ValidatorConfig{}, fmt.Errorf("get validator config: %w", err)
	}
	return c, nil
}

// Create inserts a config. Duplicate (type, stage) pairs within a tenant
// surface as a duplicate-key error the handler maps to a conflict.
func (s *ValidatorConfigStore) Create(ctx context.Context, c *ValidatorConfig) error {
	const query = `
		INSERT INTO validator_config (id, organization_id, project_id, type, stage, on_fail_action, config, is_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Config == nil {
		c.Config = map[string]any{}
	}
	_, err := s.db.Exec(ctx, query,
		c.ID, c.Scope.OrganizationID, c.Scope.ProjectID,
		c.Type, c.Stage, c.OnFail, c.Config, c.IsEnabled, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("create validator config: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a config the tenant owns.
func (s *ValidatorConfigStore) Update(ctx context.Context, c *ValidatorConfig) error {
	const query = `
		UPDATE validator_config
		SET on_fail_action = $2, config = $3, is_enabled = $4, updated_at = $5
		WHERE id = $1 AND organization_id = $6 AND project_id = $7`

	tag, err := s.db.Exec(ctx, query,
		c.ID, c.OnFail, c.Config, c.IsEnabled, time.Now().UTC(),
		c.Scope.OrganizationID, c.Scope.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("update validator config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: validator config %s", ErrNotFound, c.ID)
	}
	return nil
}

// Delete removes a config the tenant owns.
func (s *ValidatorConfigStore) Delete(ctx context.Context, id uuid.UUID, scope tenant.Scope) error {
	const query = `DELETE FROM validator_config WHERE id = $1 AND organization_id = $2 AND project_id = $3`

	tag, err := s.db.Exec(ctx, query, id, scope.OrganizationID, scope.ProjectID)
	if err != nil {
		return fmt.Errorf("delete validator config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: validator config %s", ErrNotFound, id)
	}
	return nil
}
