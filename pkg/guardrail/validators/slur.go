package validators

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/contentguard/gateway/pkg/guardrail"
)

// KindSlurMatch is the registry discriminant for the lexical slur matcher.
const KindSlurMatch = "slur_match"

//go:embed slurs.yaml
var defaultLexiconYAML []byte

type lexiconFile struct {
	Terms map[string]float64 `yaml:"terms"`
}

var loadDefaultLexicon = sync.OnceValues(func() (map[string]float64, error) {
	var file lexiconFile
	if err := yaml.Unmarshal(defaultLexiconYAML, &file); err != nil {
		return nil, fmt.Errorf("parse embedded slur lexicon: %w", err)
	}
	return file.Terms, nil
})

// slurMatch flags text containing lexicon terms at or above the
// configured severity threshold. Matched terms are masked in the fix
// value the same way the ban-list validator masks banned words.
type slurMatch struct {
	threshold float64
	pattern   *regexp.Regexp
}

func newSlurMatch(params map[string]any, _ guardrail.BuildDeps) (guardrail.Validator, error) {
	threshold := 0.5
	if raw, ok := params["threshold"]; ok {
		f, ok := toFloat(raw)
		if !ok || f < 0 || f > 1 {
			return nil, fmt.Errorf("threshold must be a number in [0,1], got %v", raw)
		}
		threshold = f
	}

	lexicon, err := loadDefaultLexicon()
	if err != nil {
		return nil, err
	}

	extra, err := stringSlice(params, "extra_terms")
	if err != nil {
		return nil, err
	}

	folder := cases.Fold()
	var terms []string
	for term, severity := range lexicon {
		if severity >= threshold {
			terms = append(terms, folder.String(term))
		}
	}
	for _, term := range extra {
		term = strings.TrimSpace(term)
		if term != "" {
			terms = append(terms, folder.String(term))
		}
	}
	if len(terms) == 0 {
		// Threshold above every known term: validator passes everything.
		return &slurMatch{threshold: threshold}, nil
	}

	// Longest term first so an overlapping phrase always masks as the
	// phrase, with a stable order regardless of lexicon map iteration.
	slices.SortFunc(terms, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = regexp.QuoteMeta(term)
	}

	pattern, err := regexp.Compile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compile slur pattern: %w", err)
	}
	return &slurMatch{threshold: threshold, pattern: pattern}, nil
}

func (v *slurMatch) Name() string { return KindSlurMatch }

func (v *slurMatch) Validate(_ context.Context, text string) (guardrail.Outcome, error) {
	if v.pattern == nil {
		return guardrail.Pass(text), nil
	}

	matches := v.pattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return guardrail.Pass(text), nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		b.WriteString(BanListMask)
		last = m[1]
	}
	b.WriteString(text[last:])

	return guardrail.Fail("Slur detected in the text.", b.String()), nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
