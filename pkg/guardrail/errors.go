package guardrail

import "errors"

var (
	// ErrUnknownValidatorKind is returned when a descriptor's kind has no
	// registered capability provider.
	ErrUnknownValidatorKind = errors.New("unknown validator kind")

	// ErrUnknownOnFail is returned when the on-fail policy is outside the
	// closed enum. This is a build-time error, never a runtime one.
	ErrUnknownOnFail = errors.New("unknown on-fail policy")

	// ErrUnknownStage is returned when a descriptor declares an
	// unrecognized pipeline stage.
	ErrUnknownStage = errors.New("unknown validator stage")

	// ErrConfigConflict is returned when a kind-specific parameter name
	// collides with a reserved system field name.
	ErrConfigConflict = errors.New("config keys conflict with reserved field names")

	// ErrReferenceNotFound is returned when a configuration reference
	// (e.g. a ban-list id) does not resolve within the caller's tenant scope.
	ErrReferenceNotFound = errors.New("configuration reference not found")

	// ErrProviderConstruction is returned when a capability provider factory
	// rejects its kind-specific parameters.
	ErrProviderConstruction = errors.New("provider construction failed")

	// ErrProviderContract is returned when a provider fails without
	// producing a fix value under a Fix or Rephrase policy.
	ErrProviderContract = errors.New("provider produced no fix value for fix/rephrase policy")

	// ErrInvalidRequestID is returned when the caller-supplied request id
	// does not parse as a UUID. No audit record exists for such requests.
	ErrInvalidRequestID = errors.New("invalid request id")
)

// ValidationError is the expected business outcome of an Exception on-fail
// policy: the text failed a check. It is always returned as a structured
// failure, never as an unhandled error.
type ValidationError struct {
	Validator string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.Validator == "" {
		return e.Reason
	}
	return e.Validator + ": " + e.Reason
}

// IsBuildError reports whether err belongs to the build-time error family,
// i.e. the caller must fix the request and no audit record was created.
func IsBuildError(err error) bool {
	return errors.Is(err, ErrUnknownValidatorKind) ||
		errors.Is(err, ErrUnknownOnFail) ||
		errors.Is(err, ErrUnknownStage) ||
		errors.Is(err, ErrConfigConflict) ||
		errors.Is(err, ErrReferenceNotFound) ||
		errors.Is(err, ErrProviderConstruction) ||
		errors.Is(err, ErrInvalidRequestID)
}
