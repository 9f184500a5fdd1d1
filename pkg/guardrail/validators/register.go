package validators

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/contentguard/gateway/pkg/cache"
	"github.com/contentguard/gateway/pkg/guardrail"
)

// Options tunes the shared resources behind the registered validators.
type Options struct {
	// AnalyzerCacheSize caps the number of distinct PII analyzer
	// configurations kept alive at once. Defaults to 32.
	AnalyzerCacheSize int
}

// Register adds all built-in validator kinds to the registry with default
// options.
func Register(r *guardrail.Registry) {
	RegisterWith(r, Options{})
}

// RegisterWith adds all built-in validator kinds to the registry. The
// PII analyzer cache is created here and captured by the factory, so it
// is owned by whoever owns the registry, not by package-level state.
func RegisterWith(r *guardrail.Registry, opts Options) {
	size := opts.AnalyzerCacheSize
	if size <= 0 {
		size = 32
	}
	analyzers := cache.NewKeyed[string, *piiAnalyzer](size)

	r.Register(KindBanList, guardrail.Entry{
		Factory: newBanList,
		Resolve: resolveBanListReference,
		Schema:  banListSchema,
	})
	r.Register(KindSlurMatch, guardrail.Entry{
		Factory: newSlurMatch,
		Schema:  slurMatchSchema,
	})
	r.Register(KindPIIRemover, guardrail.Entry{
		Factory: newPIIRemoverFactory(analyzers),
		Schema:  piiRemoverSchema,
	})
}

func banListSchema() (*jsonschema.Schema, error) {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Rejects text containing banned words, supplied inline or by reference to a stored ban list.",
		Properties: map[string]*jsonschema.Schema{
			"banned_words": {
				Type:        "array",
				Description: "Inline list of banned words or phrases. Takes precedence over ban_list_id.",
				Items:       &jsonschema.Schema{Type: "string"},
			},
			"ban_list_id": {
				Type:        "string",
				Description: "UUID of a stored ban list owned by the tenant or public.",
			},
		},
	}, nil
}

func slurMatchSchema() (*jsonschema.Schema, error) {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Flags slurs from the built-in lexicon at or above a severity threshold.",
		Properties: map[string]*jsonschema.Schema{
			"threshold": {
				Type:        "number",
				Description: "Minimum lexicon severity in [0,1] a term needs to trigger the validator.",
			},
			"extra_terms": {
				Type:        "array",
				Description: "Tenant-specific terms added to the lexicon regardless of severity.",
				Items:       &jsonschema.Schema{Type: "string"},
			},
		},
	}, nil
}

func piiRemoverSchema() (*jsonschema.Schema, error) {
	types := AllEntityTypes()
	enum := make([]any, len(types))
	for i, t := range types {
		enum[i] = t
	}
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Anonymizes detected PII entities with [REDACTED_<TYPE>] placeholders.",
		Properties: map[string]*jsonschema.Schema{
			"entity_types": {
				Type:        "array",
				Description: "Entity types to detect. Defaults to all supported types.",
				Items:       &jsonschema.Schema{Type: "string", Enum: enum},
			},
			"threshold": {
				Type:        "number",
				Description: "Minimum detection confidence in [0,1].",
			},
		},
	}, nil
}
