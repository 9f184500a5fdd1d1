// Package validators provides the built-in capability providers for the
// guardrail pipeline: ban-list matching, lexical slur detection, and
// PII removal. Each kind registers a factory, a parameter schema for the
// discovery endpoint, and, where applicable, a reference resolver for
// configuration by reference.
package validators
