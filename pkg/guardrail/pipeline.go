package guardrail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Status is the single deterministic outcome of a pipeline run.
type Status string

const (
	// StatusSuccess means every step passed or was fixed.
	StatusSuccess Status = "success"
	// StatusValidationError means a step failed under the Exception policy.
	StatusValidationError Status = "validation_error"
	// StatusSystemError means a step or the audit recorder broke unexpectedly.
	StatusSystemError Status = "system_error"
)

// StepResult records one executed step for the result and the audit trail.
// Output is nil when the step aborted the pipeline; Error is nil on pass.
type StepResult struct {
	Name   string
	Input  string
	Output *string
	Error  *string
	Passed bool
}

// Result is the immutable aggregate of one pipeline run. Created once per
// request and handed to both the audit recorder and the caller.
type Result struct {
	Status         Status
	ResponseID     uuid.UUID
	FinalText      *string
	RephraseNeeded bool
	Err            error
	Steps          []StepResult
}

// Execute runs the bound steps strictly in declared order against text,
// threading each fix through to later steps, and reduces the run to one
// Result. Later validators must see the output of earlier ones when a fix
// was applied, so ordering is a correctness requirement.
//
// Zero steps is the identity pipeline: trivially successful, text
// unchanged. Only the first failure in declared order determines an
// abort; steps after an abort never execute.
func Execute(ctx context.Context, steps []Step, text string) Result {
	current := text
	results := make([]StepResult, 0, len(steps))

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return systemResult(results, fmt.Errorf("pipeline canceled: %w", err))
		}

		outcome, err := step.invoke(ctx, current)
		if err != nil {
			results = append(results, failedStep(step.name, current, err.Error()))
			return systemResult(results, err)
		}

		if outcome.Passed {
			value := outcome.Value
			results = append(results, StepResult{
				Name:   step.name,
				Input:  current,
				Output: &value,
				Passed: true,
			})
			current = value
			continue
		}

		resolved, err := step.strategy(current, Failure{
			Message:  outcome.Message,
			FixValue: outcome.FixValue,
			HasFix:   outcome.HasFix,
		})
		if err != nil {
			results = append(results, failedStep(step.name, current, outcome.Message))
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				vErr.Validator = step.name
				return Result{
					Status: StatusValidationError,
					Err:    vErr,
					Steps:  results,
				}
			}
			return systemResult(results, err)
		}

		results = append(results, StepResult{
			Name:   step.name,
			Input:  current,
			Output: &resolved,
			Error:  &outcome.Message,
		})
		current = resolved
	}

	return Result{
		Status:         StatusSuccess,
		FinalText:      &current,
		RephraseNeeded: strings.HasPrefix(current, RephrasePrefix),
		Steps:          results,
	}
}

// invoke shields the executor from misbehaving providers: a panic inside
// a validator becomes an ordinary system error instead of crashing the
// host process.
func (s Step) invoke(ctx context.Context, text string) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validator %q panicked: %v", s.name, r)
		}
	}()
	return s.validator.Validate(ctx, text)
}

func failedStep(name, input, message string) StepResult {
	return StepResult{Name: name, Input: input, Error: &message}
}

func systemResult(steps []StepResult, err error) Result {
	return Result{Status: StatusSystemError, Err: err, Steps: steps}
}
