package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/contentguard/gateway/pkg/tenant"
)

// RequestStatus is the lifecycle state of a request-log record.
type RequestStatus string

const (
	StatusProcessing      RequestStatus = "PROCESSING"
	StatusSuccess         RequestStatus = "SUCCESS"
	StatusValidationError RequestStatus = "VALIDATION_ERROR"
	StatusSystemError     RequestStatus = "SYSTEM_ERROR"
)

// StepOutcome is the per-validator verdict persisted in validator logs.
type StepOutcome string

const (
	OutcomePass StepOutcome = "PASS"
	OutcomeFail StepOutcome = "FAIL"
)

// RequestLog is one row per pipeline run. Created at pipeline start with
// StatusProcessing and updated exactly once at pipeline end.
type RequestLog struct {
	ID           uuid.UUID
	RequestID    uuid.UUID
	Scope        tenant.Scope
	RequestText  string
	ResponseText *string
	ResponseID   *uuid.UUID
	Status       RequestStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StepRecord is one row per executed validator step, snapshotting what the
// step saw and produced. Steps never reached due to an early abort are not
// recorded.
type StepRecord struct {
	Name    string
	Input   string
	Output  *string
	Error   *string
	Outcome StepOutcome
}
