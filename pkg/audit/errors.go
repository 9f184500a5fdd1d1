package audit

import "errors"

var (
	// ErrBeginFailed indicates the request-log record could not be created.
	// The whole request fails before any validator runs.
	ErrBeginFailed = errors.New("failed to create request log")

	// ErrAlreadyFinalized indicates a second finalize attempt on the same
	// run. The first outcome stands; the duplicate is a programming error.
	ErrAlreadyFinalized = errors.New("request log already finalized")

	// ErrFinalizeFailed indicates the request-log status update did not
	// land. The audit trail for this request is incomplete.
	ErrFinalizeFailed = errors.New("failed to finalize request log")
)
