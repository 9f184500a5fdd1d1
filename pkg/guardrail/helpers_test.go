package guardrail_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/contentguard/gateway/pkg/guardrail"
	"github.com/contentguard/gateway/pkg/tenant"
)

// stubValidator is a scriptable capability provider for executor tests.
type stubValidator struct {
	name  string
	calls atomic.Int64
	fn    func(text string) (guardrail.Outcome, error)
}

func (v *stubValidator) Name() string { return v.name }

func (v *stubValidator) Validate(_ context.Context, text string) (guardrail.Outcome, error) {
	v.calls.Add(1)
	return v.fn(text)
}

func passingStub(name string) *stubValidator {
	return &stubValidator{name: name, fn: func(text string) (guardrail.Outcome, error) {
		return guardrail.Pass(text), nil
	}}
}

// registerStub registers a kind whose factory hands back the given
// validator untouched.
func registerStub(r *guardrail.Registry, kind string, v guardrail.Validator) {
	r.Register(kind, guardrail.Entry{
		Factory: func(map[string]any, guardrail.BuildDeps) (guardrail.Validator, error) {
			return v, nil
		},
	})
}

// buildSteps runs the builder over enabled descriptors for the given
// stubs, failing the test on any build error.
func buildSteps(t *testing.T, r *guardrail.Registry, descriptors ...guardrail.Descriptor) []guardrail.Step {
	t.Helper()

	builder := guardrail.NewBuilder(r, nil)
	steps, err := builder.Build(context.Background(), tenant.Scope{OrganizationID: 1, ProjectID: 1}, descriptors)
	require.NoError(t, err)
	return steps
}

func descriptor(kind string, onFail guardrail.OnFail) guardrail.Descriptor {
	return guardrail.Descriptor{
		Kind:    kind,
		Stage:   guardrail.StageInput,
		OnFail:  onFail,
		Enabled: true,
	}
}
