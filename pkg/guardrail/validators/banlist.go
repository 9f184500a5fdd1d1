package validators

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/contentguard/gateway/pkg/guardrail"
)

// KindBanList is the registry discriminant for the ban-list validator.
const KindBanList = "ban_list"

// BanListMask replaces matched banned terms in the fix value.
const BanListMask = "****"

var errNoBannedWords = errors.New("either banned_words or ban_list_id must be supplied")

// banList rejects text containing any banned word or phrase. Matching is
// unicode case-folded and word-boundary aware, so "Bad" matches "bad" but
// "class" does not match "ass".
type banList struct {
	words   []string
	pattern *regexp.Regexp
}

func newBanList(params map[string]any, _ guardrail.BuildDeps) (guardrail.Validator, error) {
	words, err := stringSlice(params, "banned_words")
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, errNoBannedWords
	}

	folder := cases.Fold()
	folded := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		folded = append(folded, regexp.QuoteMeta(folder.String(w)))
	}
	if len(folded) == 0 {
		return nil, errNoBannedWords
	}

	// Match the original text directly so the indices address it byte
	// for byte; folding rewrites lengths (U+0130 folds to two runes).
	pattern, err := regexp.Compile(`(?i)\b(` + strings.Join(folded, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compile ban list pattern: %w", err)
	}

	return &banList{words: words, pattern: pattern}, nil
}

func (v *banList) Name() string { return KindBanList }

func (v *banList) Validate(_ context.Context, text string) (guardrail.Outcome, error) {
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

	return guardrail.Fail("Banned words detected in the text.", b.String()), nil
}

// resolveBanListReference implements configuration by reference: a
// descriptor may carry a ban_list_id instead of inline banned_words. The
// inline value wins and skips the store lookup entirely.
func resolveBanListReference(ctx context.Context, params map[string]any, deps guardrail.BuildDeps) error {
	if inline, err := stringSlice(params, "banned_words"); err == nil && len(inline) > 0 {
		return nil
	}

	rawID, ok := params["ban_list_id"]
	if !ok {
		return nil
	}
	idStr, ok := rawID.(string)
	if !ok {
		return fmt.Errorf("%w: ban_list_id must be a string", guardrail.ErrReferenceNotFound)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("%w: malformed ban_list_id %q", guardrail.ErrReferenceNotFound, idStr)
	}

	if deps.BanLists == nil {
		return fmt.Errorf("%w: no ban-list store configured", guardrail.ErrReferenceNotFound)
	}
	list, err := deps.BanLists.Get(ctx, id, deps.Scope)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", guardrail.ErrReferenceNotFound, idStr, err)
	}

	params["banned_words"] = list.BannedWords
	return nil
}

// stringSlice reads a []string parameter that may arrive as []any from
// decoded JSON.
func stringSlice(params map[string]any, key string) ([]string, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a list of strings", key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a list of strings", key)
	}
}
