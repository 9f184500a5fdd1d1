// Package guardrail is the validator-pipeline orchestration core of the
// content-safety gateway. It assembles a tenant-scoped, declaratively
// configured set of validators into an executable pipeline, runs it
// against one input, and reduces the run to a single deterministic
// outcome together with auditable per-validator results.
//
// The moving parts:
//
//   - Descriptor: one configured validator instance, partitioned into a
//     closed set of system fields and kind-specific parameters.
//   - Registry: the closed tagged-variant set of validator kinds; each
//     entry supplies a factory, a parameter schema, and optionally a
//     reference resolver.
//   - Builder: descriptors in, bound Steps out, with eager reference
//     resolution and build-time validation. Nothing fails lazily during
//     execution that could have failed here.
//   - Execute: the reducer. Steps run strictly in declared order against
//     a progressively rewritten text; the first Exception-policy failure
//     aborts, Fix and Rephrase failures rewrite and continue.
//   - Service: the transport-independent public surface, pairing the
//     reducer with the audit recorder's exactly-once finalization.
//
// Validators are uniform capability providers behind the Validator
// interface; their detection internals are out of scope here.
package guardrail
