package audit_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentguard/gateway/pkg/audit"
	"github.com/contentguard/gateway/pkg/tenant"
)

type requestStore struct {
	mu              sync.Mutex
	created         []audit.RequestLog
	finalized       int
	createErr       error
	finalizeErr     error
	finalizeCtxErrs []error
}

var _ audit.RequestLogStore = (*requestStore)(nil)

func (s *requestStore) Create(_ context.Context, log audit.RequestLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, log)
	return nil
}

func (s *requestStore) Finalize(ctx context.Context, _ uuid.UUID, _ audit.RequestStatus, _ *string, _ *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized++
	s.finalizeCtxErrs = append(s.finalizeCtxErrs, ctx.Err())
	return s.finalizeErr
}

type validatorStore struct {
	mu       sync.Mutex
	batches  int
	batchErr error
}

func (s *validatorStore) CreateBatch(_ context.Context, _ uuid.UUID, _ []audit.StepRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches++
	return s.batchErr
}

func newRecorderFixture() (*audit.Recorder, *requestStore, *validatorStore) {
	requests := &requestStore{}
	validators := &validatorStore{}
	return audit.NewRecorder(requests, validators), requests, validators
}

func someSteps() []audit.StepRecord {
	output := "clean"
	return []audit.StepRecord{{Name: "ban_list", Input: "raw", Output: &output, Outcome: audit.OutcomePass}}
}

func TestRecorderBegin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	scope := tenant.Scope{OrganizationID: 1, ProjectID: 2}

	t.Run("creates a processing record", func(t *testing.T) {
		t.Parallel()

		recorder, requests, _ := newRecorderFixture()
		requestID := uuid.New()

		run, err := recorder.Begin(ctx, requestID, "input text", scope)
		require.NoError(t, err)
		require.Len(t, requests.created, 1)

		created := requests.created[0]
		assert.Equal(t, run.LogID(), created.ID)
		assert.Equal(t, requestID, created.RequestID)
		assert.Equal(t, scope, created.Scope)
		assert.Equal(t, "input text", created.RequestText)
		assert.Equal(t, audit.StatusProcessing, created.Status)
		assert.False(t, created.CreatedAt.IsZero())
	})

	t.Run("wraps store failures", func(t *testing.T) {
		t.Parallel()

		recorder, requests, _ := newRecorderFixture()
		requests.createErr = errors.New("db down")

		_, err := recorder.Begin(ctx, uuid.New(), "input", scope)
		assert.ErrorIs(t, err, audit.ErrBeginFailed)
	})
}

func TestRunFinalize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	scope := tenant.Scope{OrganizationID: 1, ProjectID: 2}
	responseText := "safe text"
	responseID := uuid.New()

	t.Run("writes the update and the step batch", func(t *testing.T) {
		t.Parallel()

		recorder, requests, validators := newRecorderFixture()
		run, err := recorder.Begin(ctx, uuid.New(), "input", scope)
		require.NoError(t, err)

		err = run.Finalize(ctx, audit.StatusSuccess, &responseText, &responseID, someSteps())
		require.NoError(t, err)
		assert.Equal(t, 1, requests.finalized)
		assert.Equal(t, 1, validators.batches)
	})

	t.Run("second call is rejected without touching storage", func(t *testing.T) {
		t.Parallel()

		recorder, requests, validators := newRecorderFixture()
		run, err := recorder.Begin(ctx, uuid.New(), "input", scope)
		require.NoError(t, err)

		require.NoError(t, run.Finalize(ctx, audit.StatusSuccess, &responseText, &responseID, someSteps()))
		err = run.Finalize(ctx, audit.StatusSystemError, nil, nil, nil)
		assert.ErrorIs(t, err, audit.ErrAlreadyFinalized)
		assert.Equal(t, 1, requests.finalized)
		assert.Equal(t, 1, validators.batches)
	})

	t.Run("concurrent finalize lands exactly one write", func(t *testing.T) {
		t.Parallel()

		recorder, requests, _ := newRecorderFixture()
		run, err := recorder.Begin(ctx, uuid.New(), "input", scope)
		require.NoError(t, err)

		var wg sync.WaitGroup
		rejected := make(chan error, 8)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := run.Finalize(ctx, audit.StatusSuccess, &responseText, &responseID, nil); err != nil {
					rejected <- err
				}
			}()
		}
		wg.Wait()
		close(rejected)

		assert.Equal(t, 1, requests.finalized)
		assert.Len(t, rejected, 7)
		for err := range rejected {
			assert.ErrorIs(t, err, audit.ErrAlreadyFinalized)
		}
	})

	t.Run("canceled request context still lands the write", func(t *testing.T) {
		t.Parallel()

		recorder, requests, _ := newRecorderFixture()
		run, err := recorder.Begin(ctx, uuid.New(), "input", scope)
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		err = run.Finalize(canceled, audit.StatusSystemError, nil, nil, nil)
		require.NoError(t, err)
		require.Equal(t, 1, requests.finalized)
		assert.NoError(t, requests.finalizeCtxErrs[0])
	})

	t.Run("empty step list skips the batch write", func(t *testing.T) {
		t.Parallel()

		recorder, _, validators := newRecorderFixture()
		run, err := recorder.Begin(ctx, uuid.New(), "input", scope)
		require.NoError(t, err)

		require.NoError(t, run.Finalize(ctx, audit.StatusSuccess, &responseText, &responseID, nil))
		assert.Zero(t, validators.batches)
	})

	t.Run("request-log failure surfaces and skips the batch", func(t *testing.T) {
		t.Parallel()

		recorder, requests, validators := newRecorderFixture()
		requests.finalizeErr = errors.New("db down")

		run, err := recorder.Begin(ctx, uuid.New(), "input", scope)
		require.NoError(t, err)

		err = run.Finalize(ctx, audit.StatusSuccess, &responseText, &responseID, someSteps())
		assert.ErrorIs(t, err, audit.ErrFinalizeFailed)
		assert.Zero(t, validators.batches)
	})

	t.Run("batch failure is reported", func(t *testing.T) {
		t.Parallel()

		recorder, _, validators := newRecorderFixture()
		batchErr := errors.New("batch rejected")
		validators.batchErr = batchErr

		run, err := recorder.Begin(ctx, uuid.New(), "input", scope)
		require.NoError(t, err)

		err = run.Finalize(ctx, audit.StatusSuccess, &responseText, &responseID, someSteps())
		assert.ErrorIs(t, err, batchErr)
	})
}
