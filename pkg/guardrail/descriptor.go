package guardrail

import (
	"fmt"
	"maps"
)

// OnFail is the declared behavior when a validator rejects text.
type OnFail string

const (
	// OnFailFix replaces the text with the provider's computed fix value.
	OnFailFix OnFail = "fix"
	// OnFailException aborts the pipeline with a validation failure.
	OnFailException OnFail = "exception"
	// OnFailRephrase replaces the text with a templated rephrase request.
	OnFailRephrase OnFail = "rephrase"
)

// Stage is the point in the LLM round-trip a validator applies to.
type Stage string

const (
	StageInput  Stage = "input"
	StageOutput Stage = "output"
)

// Reserved system field names on a raw validator payload. Everything else
// is a kind-specific parameter passed through verbatim to the provider.
var systemFields = map[string]struct{}{
	"type":       {},
	"stage":      {},
	"on_fail":    {},
	"is_enabled": {},
	"org_id":     {},
	"project_id": {},
}

// Descriptor is one configured validator instance: the discriminant kind,
// the tenant-agnostic system fields, and the kind-specific parameters.
// Immutable once built into a pipeline step.
type Descriptor struct {
	Kind    string
	Stage   Stage
	OnFail  OnFail
	Enabled bool
	Params  map[string]any
}

// SplitFields partitions a raw, origin-agnostic field map into system
// fields and kind-specific parameters. The two sets are disjoint by
// construction; collisions arise only when params are supplied separately
// (see ValidateParams).
func SplitFields(raw map[string]any) (system, params map[string]any) {
	system = make(map[string]any)
	params = make(map[string]any)
	for key, value := range raw {
		if _, reserved := systemFields[key]; reserved {
			system[key] = value
		} else {
			params[key] = value
		}
	}
	return system, params
}

// ValidateParams rejects kind-specific parameter sets that shadow a
// reserved system field name. Stored configs keep params in a separate
// document, so the collision has to be checked explicitly.
func ValidateParams(params map[string]any) error {
	var conflicts []string
	for key := range params {
		if _, reserved := systemFields[key]; reserved {
			conflicts = append(conflicts, key)
		}
	}
	if len(conflicts) > 0 {
		return fmt.Errorf("%w: %v", ErrConfigConflict, conflicts)
	}
	return nil
}

// DecodeDescriptor builds a Descriptor from a raw field map, e.g. an ad-hoc
// API payload or a stored config row merged with its params document.
// Defaults: on_fail=fix, stage=input, is_enabled=true.
func DecodeDescriptor(raw map[string]any) (Descriptor, error) {
	system, params := SplitFields(raw)

	kind, _ := system["type"].(string)
	if kind == "" {
		return Descriptor{}, fmt.Errorf("%w: missing type", ErrUnknownValidatorKind)
	}

	desc := Descriptor{
		Kind:    kind,
		Stage:   StageInput,
		OnFail:  OnFailFix,
		Enabled: true,
		Params:  params,
	}

	if v, ok := system["stage"]; ok {
		stage, err := parseStage(v)
		if err != nil {
			return Descriptor{}, err
		}
		desc.Stage = stage
	}
	if v, ok := system["on_fail"]; ok {
		onFail, err := ParseOnFail(v)
		if err != nil {
			return Descriptor{}, err
		}
		desc.OnFail = onFail
	}
	if v, ok := system["is_enabled"].(bool); ok {
		desc.Enabled = v
	}

	return desc, nil
}

// ParseOnFail converts a loosely-typed config value into the closed OnFail
// enum. Unrecognized values are build-time errors.
func ParseOnFail(v any) (OnFail, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrUnknownOnFail, v)
	}
	switch OnFail(s) {
	case OnFailFix, OnFailException, OnFailRephrase:
		return OnFail(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOnFail, s)
	}
}

func parseStage(v any) (Stage, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrUnknownStage, v)
	}
	switch Stage(s) {
	case StageInput, StageOutput:
		return Stage(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
	}
}

// cloneParams shields a descriptor's params from mutation during reference
// resolution so the caller's map stays untouched.
func cloneParams(params map[string]any) map[string]any {
	if params == nil {
		return make(map[string]any)
	}
	return maps.Clone(params)
}
