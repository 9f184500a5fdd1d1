package guardrail

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/contentguard/gateway/pkg/tenant"
)

// BuildDeps carries the external collaborators a provider factory or
// reference resolver may need at build time. All fields are optional;
// factories must tolerate absent deps they do not use.
type BuildDeps struct {
	// Scope isolates reference lookups between tenants.
	Scope tenant.Scope

	// BanLists resolves ban-list references to stored word lists.
	BanLists BanListStore
}

// Factory instantiates a capability provider from its kind-specific
// parameters. Parameter validation failures must be returned, not deferred
// to execution time.
type Factory func(params map[string]any, deps BuildDeps) (Validator, error)

// ReferenceResolver eagerly resolves configuration-by-reference parameters
// (e.g. ban_list_id) into operative values before the factory runs. It may
// mutate params, which the builder clones per descriptor.
type ReferenceResolver func(ctx context.Context, params map[string]any, deps BuildDeps) error

// Entry describes one registered validator kind.
type Entry struct {
	// Factory builds the provider. Required.
	Factory Factory

	// Schema describes the kind-specific parameters as JSON Schema for
	// the discovery endpoint. Optional.
	Schema func() (*jsonschema.Schema, error)

	// Resolve runs before Factory for kinds supporting configuration by
	// reference. Optional.
	Resolve ReferenceResolver
}

// Registry is the closed, extensible set of validator kinds. Adding a kind
// means registering one new entry, not modifying dispatch logic.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds a kind to the registry. Registering a nil factory or a
// duplicate kind is a programming error and panics, matching fail-fast
// initialization of the process-wide registry.
func (r *Registry) Register(kind string, entry Entry) {
	if kind == "" {
		panic("guardrail: empty validator kind")
	}
	if entry.Factory == nil {
		panic(fmt.Sprintf("guardrail: nil factory for kind %q", kind))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[kind]; exists {
		panic(fmt.Sprintf("guardrail: validator kind %q already registered", kind))
	}
	r.entries[kind] = entry
}

func (r *Registry) lookup(kind string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[kind]
	return entry, ok
}

// KindInfo is one discovery entry: the kind plus the JSON schema of its
// parameters, or a per-kind error when the schema cannot be produced.
type KindInfo struct {
	Kind   string             `json:"type"`
	Schema *jsonschema.Schema `json:"params_schema,omitempty"`
	Err    string             `json:"error,omitempty"`
}

// Kinds enumerates registered kinds sorted by name. Schema failures are
// reported per entry, never as a total failure.
func (r *Registry) Kinds() []KindInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]KindInfo, 0, len(r.entries))
	for kind, entry := range r.entries {
		info := KindInfo{Kind: kind}
		if entry.Schema != nil {
			schema, err := entry.Schema()
			if err != nil {
				info.Err = err.Error()
			} else {
				info.Schema = schema
			}
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Kind < infos[j].Kind })
	return infos
}
