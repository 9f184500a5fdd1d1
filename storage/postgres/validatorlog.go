package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentguard/gateway/pkg/audit"
)

// ValidatorLogStore implements audit.ValidatorLogStore with a single
// batched insert per pipeline run.
type ValidatorLogStore struct {
	db *pgxpool.Pool
}

func NewValidatorLogStore(db *pgxpool.Pool) *ValidatorLogStore {
	if db == nil {
		panic("postgres: db pool cannot be nil")
	}
	return &ValidatorLogStore{db: db}
}

func (s *ValidatorLogStore) CreateBatch(ctx context.Context, requestLogID uuid.UUID, records []audit.StepRecord) error {
	if len(records) == 0 {
		return nil
	}

	const query = `
		INSERT INTO validator_log (id, request_id, name, input, output, error, outcome, inserted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(query,
			uuid.New(), requestLogID, record.Name,
			record.Input, record.Output, record.Error, record.Outcome, now,
		)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert validator log: %w", err)
		}
	}
	return nil
}
