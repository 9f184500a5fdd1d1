package guardrail

import "fmt"

// RephrasePrefix is the constant prefix of the safe text produced by the
// Rephrase on-fail strategy. Callers detect rephrase requests by this
// prefix on the final text.
const RephrasePrefix = "Please rephrase the query without unsafe content."

// Failure is the detail handed to an on-fail strategy when a validator
// rejects text.
type Failure struct {
	Message  string
	FixValue string
	HasFix   bool
}

// Strategy resolves a validator failure into replacement text for the
// pipeline to continue with, or an error aborting it. A *ValidationError
// aborts with ValidationError status; anything else is a system error.
type Strategy func(original string, failure Failure) (string, error)

// ResolveOnFail maps the declarative policy enum to a concrete strategy.
// The mapping is pure and total over the closed enum; an unrecognized
// value fails the build, never a running pipeline.
func ResolveOnFail(policy OnFail) (Strategy, error) {
	switch policy {
	case OnFailFix:
		return fixStrategy, nil
	case OnFailException:
		return exceptionStrategy, nil
	case OnFailRephrase:
		return rephraseStrategy, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOnFail, policy)
	}
}

// fixStrategy uses the provider's own computed fix value verbatim. A
// missing fix value here is a provider contract violation, surfaced as
// a system-level misconfiguration rather than a silent pass-through.
func fixStrategy(_ string, failure Failure) (string, error) {
	if !failure.HasFix {
		return "", fmt.Errorf("%w: %s", ErrProviderContract, failure.Message)
	}
	return failure.FixValue, nil
}

// exceptionStrategy aborts the pipeline at the failing step.
func exceptionStrategy(_ string, failure Failure) (string, error) {
	return "", &ValidationError{Reason: failure.Message}
}

// rephraseStrategy ignores any provider fix value and asks the user to
// rephrase, carrying the failure reason for context.
func rephraseStrategy(_ string, failure Failure) (string, error) {
	return RephrasePrefix + " " + failure.Message, nil
}
