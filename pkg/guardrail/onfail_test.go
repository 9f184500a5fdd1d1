package guardrail_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentguard/gateway/pkg/guardrail"
)

func TestResolveOnFail(t *testing.T) {
	t.Parallel()

	t.Run("fix uses the provider fix value", func(t *testing.T) {
		t.Parallel()

		strategy, err := guardrail.ResolveOnFail(guardrail.OnFailFix)
		require.NoError(t, err)

		replacement, err := strategy("bad text", guardrail.Failure{
			Message:  "banned words",
			FixValue: "*** text",
			HasFix:   true,
		})
		require.NoError(t, err)
		assert.Equal(t, "*** text", replacement)
	})

	t.Run("fix without a fix value is a contract violation", func(t *testing.T) {
		t.Parallel()

		strategy, err := guardrail.ResolveOnFail(guardrail.OnFailFix)
		require.NoError(t, err)

		_, err = strategy("bad text", guardrail.Failure{Message: "banned words"})
		assert.ErrorIs(t, err, guardrail.ErrProviderContract)
	})

	t.Run("exception aborts with a validation error", func(t *testing.T) {
		t.Parallel()

		strategy, err := guardrail.ResolveOnFail(guardrail.OnFailException)
		require.NoError(t, err)

		_, err = strategy("bad text", guardrail.Failure{Message: "banned words"})
		require.Error(t, err)

		var vErr *guardrail.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "banned words", vErr.Reason)
	})

	t.Run("rephrase ignores the fix value", func(t *testing.T) {
		t.Parallel()

		strategy, err := guardrail.ResolveOnFail(guardrail.OnFailRephrase)
		require.NoError(t, err)

		replacement, err := strategy("bad text", guardrail.Failure{
			Message:  "banned words",
			FixValue: "*** text",
			HasFix:   true,
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(replacement, guardrail.RephrasePrefix))
		assert.Contains(t, replacement, "banned words")
		assert.NotContains(t, replacement, "***")
	})

	t.Run("unknown policy fails the build", func(t *testing.T) {
		t.Parallel()

		_, err := guardrail.ResolveOnFail(guardrail.OnFail("retry"))
		assert.True(t, errors.Is(err, guardrail.ErrUnknownOnFail))
	})
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	t.Run("includes the validator name when set", func(t *testing.T) {
		t.Parallel()

		err := &guardrail.ValidationError{Validator: "ban_list", Reason: "banned words"}
		assert.Equal(t, "ban_list: banned words", err.Error())
	})

	t.Run("reason alone when unattributed", func(t *testing.T) {
		t.Parallel()

		err := &guardrail.ValidationError{Reason: "banned words"}
		assert.Equal(t, "banned words", err.Error())
	})
}
