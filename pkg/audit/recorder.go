package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/contentguard/gateway/pkg/tenant"
)

// RequestLogStore persists request-level audit records.
type RequestLogStore interface {
	Create(ctx context.Context, log RequestLog) error
	Finalize(ctx context.Context, id uuid.UUID, status RequestStatus, responseText *string, responseID *uuid.UUID) error
}

// ValidatorLogStore persists per-step audit records in a single batch.
type ValidatorLogStore interface {
	CreateBatch(ctx context.Context, requestLogID uuid.UUID, records []StepRecord) error
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the slog logger used for best-effort write failures.
func WithLogger(log *slog.Logger) Option {
	return func(r *Recorder) {
		if log != nil {
			r.log = log
		}
	}
}

// WithFinalizeTimeout bounds the detached finalize write. Defaults to 5s.
func WithFinalizeTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.finalizeTimeout = d
		}
	}
}

// Recorder writes the audit trail of pipeline runs: exactly one request-log
// record per request, updated exactly once at the end, plus zero or more
// validator-log records for the steps that actually executed.
type Recorder struct {
	requests        RequestLogStore
	validators      ValidatorLogStore
	log             *slog.Logger
	finalizeTimeout time.Duration
}

// NewRecorder creates a Recorder over the given stores.
func NewRecorder(requests RequestLogStore, validators ValidatorLogStore, opts ...Option) *Recorder {
	if requests == nil {
		panic("audit: request log store cannot be nil")
	}
	if validators == nil {
		panic("audit: validator log store cannot be nil")
	}

	r := &Recorder{
		requests:        requests,
		validators:      validators,
		log:             slog.Default(),
		finalizeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Begin creates the request-log record before pipeline execution starts.
// It is not optional: if it fails the request fails with a system error
// before any validator runs.
func (r *Recorder) Begin(ctx context.Context, requestID uuid.UUID, inputText string, scope tenant.Scope) (*Run, error) {
	log := RequestLog{
		ID:          uuid.New(),
		RequestID:   requestID,
		Scope:       scope,
		RequestText: inputText,
		Status:      StatusProcessing,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.requests.Create(ctx, log); err != nil {
		return nil, errors.Join(ErrBeginFailed, err)
	}
	return &Run{recorder: r, logID: log.ID}, nil
}

// Run is the handle for finalizing one begun request. Finalize is
// exactly-once per Run regardless of which exit path the pipeline took.
type Run struct {
	recorder *Recorder
	logID    uuid.UUID
	once     sync.Once
	err      error
	done     bool
}

// LogID exposes the request-log primary key, mainly for tests.
func (run *Run) LogID() uuid.UUID { return run.logID }

// Finalize updates the request-log status and writes one validator-log
// record per executed step. It uses a context detached from the request so
// a canceled caller still lands its audit record, and it is guarded
// against double invocation: the second and later calls return
// ErrAlreadyFinalized without touching storage.
func (run *Run) Finalize(ctx context.Context, status RequestStatus, responseText *string, responseID *uuid.UUID, steps []StepRecord) error {
	called := false
	run.once.Do(func() {
		called = true
		run.done = true
		run.err = run.write(ctx, status, responseText, responseID, steps)
	})
	if !called {
		return ErrAlreadyFinalized
	}
	return run.err
}

func (run *Run) write(ctx context.Context, status RequestStatus, responseText *string, responseID *uuid.UUID, steps []StepRecord) error {
	r := run.recorder

	// Detach from request cancellation: finalize is best-effort but must
	// not be skipped just because the caller went away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.finalizeTimeout)
	defer cancel()

	if err := r.requests.Finalize(ctx, run.logID, status, responseText, responseID); err != nil {
		r.log.ErrorContext(ctx, "audit finalize failed",
			slog.String("request_log_id", run.logID.String()),
			slog.String("status", string(status)),
			slog.Any("error", err),
		)
		return errors.Join(ErrFinalizeFailed, err)
	}

	if len(steps) == 0 {
		return nil
	}
	if err := r.validators.CreateBatch(ctx, run.logID, steps); err != nil {
		r.log.ErrorContext(ctx, "validator log batch failed",
			slog.String("request_log_id", run.logID.String()),
			slog.Int("steps", len(steps)),
			slog.Any("error", err),
		)
		return fmt.Errorf("validator log batch: %w", err)
	}
	return nil
}
