package validators

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/contentguard/gateway/pkg/cache"
	"github.com/contentguard/gateway/pkg/guardrail"
)

// KindPIIRemover is the registry discriminant for the PII remover.
const KindPIIRemover = "pii_remover"

// recognizer is one PII detector: a pattern plus the confidence it assigns
// to its matches. Detections below a validator's threshold are ignored.
type recognizer struct {
	entityType string
	pattern    *regexp.Regexp
	confidence float64
}

// Recognizer patterns are deliberately lexical; detection quality is not
// this gateway's concern, the provider contract is.
var allRecognizers = []recognizer{
	{"CREDIT_CARD", regexp.MustCompile(`\b(?:\d[ -]?){12,15}\d\b`), 0.7},
	{"EMAIL_ADDRESS", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), 0.9},
	{"IN_AADHAAR", regexp.MustCompile(`\b\d{4}\s\d{4}\s\d{4}\b`), 0.7},
	{"IN_PAN", regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`), 0.8},
	{"IP_ADDRESS", regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), 0.8},
	{"PHONE_NUMBER", regexp.MustCompile(`\+?\d[\d().\s-]{7,13}\d`), 0.6},
	{"URL", regexp.MustCompile(`\bhttps?://\S+`), 0.8},
}

// AllEntityTypes lists the entity types the PII remover can detect,
// sorted; used as the default allow-list and in the discovery schema.
func AllEntityTypes() []string {
	types := make([]string, len(allRecognizers))
	for i, r := range allRecognizers {
		types[i] = r.entityType
	}
	return types
}

// piiAnalyzer is the expensive-to-construct piece, shared process-wide
// between pipelines whose configs select the same entity-type set.
type piiAnalyzer struct {
	recognizers []recognizer
}

func buildAnalyzer(entityTypes []string) (*piiAnalyzer, error) {
	selected := make([]recognizer, 0, len(entityTypes))
	for _, r := range allRecognizers {
		if slices.Contains(entityTypes, r.entityType) {
			selected = append(selected, r)
		}
	}
	for _, t := range entityTypes {
		if !slices.ContainsFunc(allRecognizers, func(r recognizer) bool { return r.entityType == t }) {
			return nil, fmt.Errorf("unknown entity type %q", t)
		}
	}
	return &piiAnalyzer{recognizers: selected}, nil
}

type detection struct {
	entityType string
	start, end int
	confidence float64
}

func (a *piiAnalyzer) analyze(text string, threshold float64) []detection {
	var detections []detection
	for _, r := range a.recognizers {
		if r.confidence < threshold {
			continue
		}
		for _, m := range r.pattern.FindAllStringIndex(text, -1) {
			detections = append(detections, detection{r.entityType, m[0], m[1], r.confidence})
		}
	}
	slices.SortFunc(detections, func(x, y detection) int { return x.start - y.start })
	return detections
}

// piiRemover anonymizes detected entities with [REDACTED_<TYPE>]
// placeholders and offers the anonymized text as its fix value.
type piiRemover struct {
	analyzer  *piiAnalyzer
	threshold float64
}

func newPIIRemoverFactory(analyzers *cache.Keyed[string, *piiAnalyzer]) guardrail.Factory {
	return func(params map[string]any, _ guardrail.BuildDeps) (guardrail.Validator, error) {
		entityTypes, err := stringSlice(params, "entity_types")
		if err != nil {
			return nil, err
		}
		if len(entityTypes) == 0 {
			entityTypes = AllEntityTypes()
		}

		threshold := 0.5
		if raw, ok := params["threshold"]; ok {
			f, ok := toFloat(raw)
			if !ok || f < 0 || f > 1 {
				return nil, fmt.Errorf("threshold must be a number in [0,1], got %v", raw)
			}
			threshold = f
		}

		// Analyzers are cached by the entity-type set, not by tenant:
		// two tenants selecting the same types share one instance.
		key := analyzerKey(entityTypes)
		analyzer, err := analyzers.GetOrBuild(key, func() (*piiAnalyzer, error) {
			return buildAnalyzer(entityTypes)
		})
		if err != nil {
			return nil, err
		}

		return &piiRemover{analyzer: analyzer, threshold: threshold}, nil
	}
}

func analyzerKey(entityTypes []string) string {
	sorted := slices.Clone(entityTypes)
	slices.Sort(sorted)
	return strings.Join(slices.Compact(sorted), ",")
}

func (v *piiRemover) Name() string { return KindPIIRemover }

func (v *piiRemover) Validate(_ context.Context, text string) (guardrail.Outcome, error) {
	detections := v.analyzer.analyze(text, v.threshold)
	if len(detections) == 0 {
		return guardrail.Pass(text), nil
	}

	var b strings.Builder
	last := 0
	for _, d := range detections {
		if d.start < last {
			// Overlapping detection already redacted by an earlier one.
			continue
		}
		b.WriteString(text[last:d.start])
		b.WriteString("[REDACTED_" + d.entityType + "]")
		last = d.end
	}
	b.WriteString(text[last:])

	return guardrail.Fail("PII detected in the text.", b.String()), nil
}
