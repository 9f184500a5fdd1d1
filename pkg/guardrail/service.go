package guardrail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/contentguard/gateway/pkg/audit"
	"github.com/contentguard/gateway/pkg/tenant"
)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the slog logger used for run-level diagnostics.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// Service is the pipeline's public surface, independent of transport:
// build, execute, audit, reduce to one result.
type Service struct {
	registry *Registry
	builder  *Builder
	recorder *audit.Recorder
	log      *slog.Logger
}

// NewService wires the orchestration core together.
func NewService(registry *Registry, builder *Builder, recorder *audit.Recorder, opts ...ServiceOption) *Service {
	if registry == nil {
		panic("guardrail: registry cannot be nil")
	}
	if builder == nil {
		panic("guardrail: builder cannot be nil")
	}
	if recorder == nil {
		panic("guardrail: recorder cannot be nil")
	}

	s := &Service{
		registry: registry,
		builder:  builder,
		recorder: recorder,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one guardrail request end to end.
//
// Build-time failures (malformed request id, unknown kind, parameter
// conflicts, unresolvable references) return a non-nil error and leave no
// audit record behind. Once the audit record is begun, every exit path
// reaches exactly one finalize call, and the outcome is reported through
// the Result, not the error return.
func (s *Service) Run(ctx context.Context, requestID, text string, descriptors []Descriptor, scope tenant.Scope) (Result, error) {
	reqID, err := uuid.Parse(requestID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidRequestID, requestID)
	}

	steps, err := s.builder.Build(ctx, scope, descriptors)
	if err != nil {
		return Result{}, err
	}

	run, err := s.recorder.Begin(ctx, reqID, text, scope)
	if err != nil {
		s.log.ErrorContext(ctx, "audit begin failed",
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)
		return Result{Status: StatusSystemError, Err: err}, nil
	}

	result := Execute(ctx, steps, text)
	result.ResponseID = uuid.New()

	s.finish(ctx, run, result)
	return result, nil
}

// finish is the single consolidated finalization routine: it translates
// the reduced result into the request-log update and the per-step batch.
// Keeping one call site (plus the Run handle's own once-guard) is what
// upholds the exactly-once audit invariant across the early-return paths
// above.
func (s *Service) finish(ctx context.Context, run *audit.Run, result Result) {
	records := make([]audit.StepRecord, len(result.Steps))
	for i, step := range result.Steps {
		outcome := audit.OutcomeFail
		if step.Passed {
			outcome = audit.OutcomePass
		}
		records[i] = audit.StepRecord{
			Name:    step.Name,
			Input:   step.Input,
			Output:  step.Output,
			Error:   step.Error,
			Outcome: outcome,
		}
	}

	responseID := result.ResponseID
	if err := run.Finalize(ctx, auditStatus(result.Status), result.FinalText, &responseID, records); err != nil {
		s.log.ErrorContext(ctx, "audit finalize failed",
			slog.String("response_id", responseID.String()),
			slog.Any("error", err),
		)
	}
}

func auditStatus(status Status) audit.RequestStatus {
	switch status {
	case StatusSuccess:
		return audit.StatusSuccess
	case StatusValidationError:
		return audit.StatusValidationError
	default:
		return audit.StatusSystemError
	}
}

// Kinds enumerates the registered validator kinds with their parameter
// schemas for client-side form building.
func (s *Service) Kinds() []KindInfo {
	return s.registry.Kinds()
}
