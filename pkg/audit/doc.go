// Package audit records the trail of guardrail pipeline runs.
//
// Each run produces exactly one request-log record, created before the
// first validator executes and updated exactly once when the pipeline
// finishes, plus one validator-log record per step that actually ran.
// The single-update invariant is load-bearing: every exit path (success,
// validation failure, system error) funnels through one finalize call on
// the Run handle, and the handle itself rejects a second attempt.
//
// Storage is pluggable via the RequestLogStore and ValidatorLogStore
// interfaces; storage/postgres provides the pgx-backed implementations.
package audit
