package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentguard/gateway/pkg/audit"
)

// RequestLogStore implements audit.RequestLogStore. One row per pipeline
// run; the status update in Finalize happens exactly once per row, which
// the recorder enforces upstream.
type RequestLogStore struct {
	db *pgxpool.Pool
}

func NewRequestLogStore(db *pgxpool.Pool) *RequestLogStore {
	if db == nil {
		panic("postgres: db pool cannot be nil")
	}
	return &RequestLogStore{db: db}
}

func (s *RequestLogStore) Create(ctx context.Context, log audit.RequestLog) error {
	const query = `
		INSERT INTO request_log (id, request_id, organization_id, project_id, request_text, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`

	_, err := s.db.Exec(ctx, query,
		log.ID, log.RequestID, log.Scope.OrganizationID, log.Scope.ProjectID,
		log.RequestText, log.Status, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create request log: %w", err)
	}
	return nil
}

func (s *RequestLogStore) Finalize(ctx context.Context, id uuid.UUID, status audit.RequestStatus, responseText *string, responseID *uuid.UUID) error {
	const query = `
		UPDATE request_log
		SET status = $2, response_text = $3, response_id = $4, updated_at = $5
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, id, status, responseText, responseID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("finalize request log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: request log %s", ErrNotFound, id)
	}
	return nil
}
