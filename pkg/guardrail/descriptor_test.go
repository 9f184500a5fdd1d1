package guardrail_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentguard/gateway/pkg/guardrail"
)

func TestSplitFields(t *testing.T) {
	t.Parallel()

	t.Run("partitions system fields from params", func(t *testing.T) {
		t.Parallel()

		raw := map[string]any{
			"type":         "ban_list",
			"stage":        "input",
			"on_fail":      "fix",
			"is_enabled":   true,
			"org_id":       int64(1),
			"project_id":   int64(2),
			"banned_words": []string{"bad"},
			"threshold":    0.7,
		}

		system, params := guardrail.SplitFields(raw)

		assert.Len(t, system, 6)
		assert.Equal(t, "ban_list", system["type"])
		assert.Len(t, params, 2)
		assert.Equal(t, 0.7, params["threshold"])
		assert.NotContains(t, params, "type")
	})

	t.Run("empty input yields empty disjoint maps", func(t *testing.T) {
		t.Parallel()

		system, params := guardrail.SplitFields(map[string]any{})
		assert.Empty(t, system)
		assert.Empty(t, params)
	})
}

func TestValidateParams(t *testing.T) {
	t.Parallel()

	t.Run("accepts kind-specific params", func(t *testing.T) {
		t.Parallel()

		err := guardrail.ValidateParams(map[string]any{"banned_words": []string{"x"}})
		assert.NoError(t, err)
	})

	t.Run("rejects reserved field names", func(t *testing.T) {
		t.Parallel()

		err := guardrail.ValidateParams(map[string]any{"stage": "output", "threshold": 0.5})
		require.Error(t, err)
		assert.ErrorIs(t, err, guardrail.ErrConfigConflict)
		assert.Contains(t, err.Error(), "stage")
	})

	t.Run("nil params are fine", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, guardrail.ValidateParams(nil))
	})
}

func TestDecodeDescriptor(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()

		desc, err := guardrail.DecodeDescriptor(map[string]any{"type": "ban_list"})
		require.NoError(t, err)
		assert.Equal(t, "ban_list", desc.Kind)
		assert.Equal(t, guardrail.StageInput, desc.Stage)
		assert.Equal(t, guardrail.OnFailFix, desc.OnFail)
		assert.True(t, desc.Enabled)
		assert.Empty(t, desc.Params)
	})

	t.Run("reads explicit system fields", func(t *testing.T) {
		t.Parallel()

		desc, err := guardrail.DecodeDescriptor(map[string]any{
			"type":       "pii_remover",
			"stage":      "output",
			"on_fail":    "exception",
			"is_enabled": false,
			"threshold":  0.8,
		})
		require.NoError(t, err)
		assert.Equal(t, guardrail.StageOutput, desc.Stage)
		assert.Equal(t, guardrail.OnFailException, desc.OnFail)
		assert.False(t, desc.Enabled)
		assert.Equal(t, 0.8, desc.Params["threshold"])
	})

	t.Run("missing type", func(t *testing.T) {
		t.Parallel()

		_, err := guardrail.DecodeDescriptor(map[string]any{"on_fail": "fix"})
		assert.ErrorIs(t, err, guardrail.ErrUnknownValidatorKind)
	})

	t.Run("unknown stage", func(t *testing.T) {
		t.Parallel()

		_, err := guardrail.DecodeDescriptor(map[string]any{"type": "ban_list", "stage": "middle"})
		assert.ErrorIs(t, err, guardrail.ErrUnknownStage)
	})

	t.Run("unknown on_fail", func(t *testing.T) {
		t.Parallel()

		_, err := guardrail.DecodeDescriptor(map[string]any{"type": "ban_list", "on_fail": "retry"})
		assert.ErrorIs(t, err, guardrail.ErrUnknownOnFail)
	})
}

func TestParseOnFail(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"fix", "exception", "rephrase"} {
		t.Run(valid, func(t *testing.T) {
			t.Parallel()

			got, err := guardrail.ParseOnFail(valid)
			require.NoError(t, err)
			assert.Equal(t, guardrail.OnFail(valid), got)
		})
	}

	t.Run("rejects non-string", func(t *testing.T) {
		t.Parallel()

		_, err := guardrail.ParseOnFail(42)
		assert.ErrorIs(t, err, guardrail.ErrUnknownOnFail)
	})

	t.Run("rejects unknown value", func(t *testing.T) {
		t.Parallel()

		_, err := guardrail.ParseOnFail("ignore")
		assert.ErrorIs(t, err, guardrail.ErrUnknownOnFail)
	})
}
