package guardrail

import "context"

// Outcome is the result of one validator evaluating one text.
type Outcome struct {
	// Passed indicates the validator accepted the text.
	Passed bool

	// Value carries the text on pass. Providers that normalize the input
	// return the normalized form here; all others echo the input verbatim.
	Value string

	// Message is the human-readable failure reason. Empty on pass.
	Message string

	// FixValue is an optional sanitized alternative computed by the
	// provider on failure. Consumed by the Fix on-fail strategy.
	FixValue string

	// HasFix indicates FixValue is populated. Required when the resolved
	// on-fail strategy is Fix; its absence there is a contract violation.
	HasFix bool
}

// Pass builds a passing outcome carrying the (possibly normalized) text.
func Pass(value string) Outcome {
	return Outcome{Passed: true, Value: value}
}

// Fail builds a failing outcome with a sanitized alternative.
func Fail(message, fixValue string) Outcome {
	return Outcome{Message: message, FixValue: fixValue, HasFix: true}
}

// FailNoFix builds a failing outcome without a fix value. Only valid for
// validators configured with the Exception on-fail policy.
func FailNoFix(message string) Outcome {
	return Outcome{Message: message}
}

// Validator is the uniform capability-provider contract. Implementations
// must be safe for concurrent use and hold no per-call mutable state;
// expensive internals (detection models) may be cached across calls.
type Validator interface {
	// Name identifies the validator in results and audit records.
	Name() string

	// Validate evaluates text and reports the outcome. A returned error
	// means the provider itself broke, not that the text failed; the
	// executor converts it to a system error.
	Validate(ctx context.Context, text string) (Outcome, error)
}
