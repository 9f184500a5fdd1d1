package guardrail

import (
	"context"
	"fmt"

	"github.com/contentguard/gateway/pkg/tenant"
)

// Step is one bound runtime unit of a pipeline: a capability provider
// paired with its resolved on-fail strategy. Created by Build, consumed
// once by an executor, then discarded.
type Step struct {
	name      string
	validator Validator
	strategy  Strategy
	onFail    OnFail
}

// Name returns the step's validator name as reported in results and audit
// records.
func (s Step) Name() string { return s.name }

// Builder converts ordered descriptor lists into executable pipelines.
// Safe for concurrent use; all per-request state lives in the returned
// steps.
type Builder struct {
	registry *Registry
	banLists BanListStore
}

// NewBuilder creates a pipeline builder over the given kind registry.
// banLists may be nil when no descriptor uses configuration by reference.
func NewBuilder(registry *Registry, banLists BanListStore) *Builder {
	if registry == nil {
		panic("guardrail: registry cannot be nil")
	}
	return &Builder{registry: registry, banLists: banLists}
}

// Build resolves each descriptor into a bound step, preserving order.
// Disabled descriptors are filtered out, not errors. Any resolution
// failure aborts the whole build; no step is skipped silently.
func (b *Builder) Build(ctx context.Context, scope tenant.Scope, descriptors []Descriptor) ([]Step, error) {
	deps := BuildDeps{Scope: scope, BanLists: b.banLists}

	steps := make([]Step, 0, len(descriptors))
	for i, desc := range descriptors {
		if !desc.Enabled {
			continue
		}

		entry, ok := b.registry.lookup(desc.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownValidatorKind, desc.Kind)
		}

		strategy, err := ResolveOnFail(desc.OnFail)
		if err != nil {
			return nil, fmt.Errorf("validator %d (%s): %w", i, desc.Kind, err)
		}

		if err := ValidateParams(desc.Params); err != nil {
			return nil, fmt.Errorf("validator %d (%s): %w", i, desc.Kind, err)
		}

		params := cloneParams(desc.Params)
		if entry.Resolve != nil {
			if err := entry.Resolve(ctx, params, deps); err != nil {
				return nil, fmt.Errorf("validator %d (%s): %w", i, desc.Kind, err)
			}
		}

		validator, err := entry.Factory(params, deps)
		if err != nil {
			return nil, fmt.Errorf("validator %d (%s): %w: %w", i, desc.Kind, ErrProviderConstruction, err)
		}

		steps = append(steps, Step{
			name:      validator.Name(),
			validator: validator,
			strategy:  strategy,
			onFail:    desc.OnFail,
		})
	}

	return steps, nil
}
