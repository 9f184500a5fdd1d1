package guardrail_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentguard/gateway/pkg/guardrail"
)

func TestExecute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty pipeline is the identity", func(t *testing.T) {
		t.Parallel()

		result := guardrail.Execute(ctx, nil, "hello world")
		assert.Equal(t, guardrail.StatusSuccess, result.Status)
		require.NotNil(t, result.FinalText)
		assert.Equal(t, "hello world", *result.FinalText)
		assert.False(t, result.RephraseNeeded)
		assert.Empty(t, result.Steps)
	})

	t.Run("all passing steps thread text unchanged", func(t *testing.T) {
		t.Parallel()

		r := guardrail.NewRegistry()
		first := passingStub("first")
		second := passingStub("second")
		registerStub(r, "first", first)
		registerStub(r, "second", second)

		steps := buildSteps(t, r,
			descriptor("first", guardrail.OnFailFix),
			descriptor("second", guardrail.OnFailFix),
		)

		result := guardrail.Execute(ctx, steps, "clean text")
		assert.Equal(t, guardrail.StatusSuccess, result.Status)
		assert.Equal(t, "clean text", *result.FinalText)
		require.Len(t, result.Steps, 2)
		assert.True(t, result.Steps[0].Passed)
		assert.True(t, result.Steps[1].Passed)
		assert.Equal(t, int64(1), first.calls.Load())
		assert.Equal(t, int64(1), second.calls.Load())
	})

	t.Run("fix replaces text for later steps", func(t *testing.T) {
		t.Parallel()

		r := guardrail.NewRegistry()
		var seenByLater string
		failing := &stubValidator{name: "masker", fn: func(string) (guardrail.Outcome, error) {
			return guardrail.Fail("bad words", "this is ***"), nil
		}}
		later := &stubValidator{name: "later", fn: func(text string) (guardrail.Outcome, error) {
			seenByLater = text
			return guardrail.Pass(text), nil
		}}
		registerStub(r, "masker", failing)
		registerStub(r, "later", later)

		steps := buildSteps(t, r,
			descriptor("masker", guardrail.OnFailFix),
			descriptor("later", guardrail.OnFailFix),
		)

		result := guardrail.Execute(ctx, steps, "this is bad")
		assert.Equal(t, guardrail.StatusSuccess, result.Status)
		assert.Equal(t, "this is ***", *result.FinalText)
		assert.Equal(t, "this is ***", seenByLater)

		require.Len(t, result.Steps, 2)
		fixed := result.Steps[0]
		assert.False(t, fixed.Passed)
		assert.Equal(t, "this is bad", fixed.Input)
		require.NotNil(t, fixed.Output)
		assert.Equal(t, "this is ***", *fixed.Output)
		require.NotNil(t, fixed.Error)
		assert.Equal(t, "bad words", *fixed.Error)
	})

	t.Run("exception aborts and later steps never run", func(t *testing.T) {
		t.Parallel()

		r := guardrail.NewRegistry()
		failing := &stubValidator{name: "strict", fn: func(string) (guardrail.Outcome, error) {
			return guardrail.FailNoFix("forbidden content"), nil
		}}
		later := passingStub("later")
		registerStub(r, "strict", failing)
		registerStub(r, "later", later)

		steps := buildSteps(t, r,
			descriptor("strict", guardrail.OnFailException),
			descriptor("later", guardrail.OnFailFix),
		)

		result := guardrail.Execute(ctx, steps, "bad text")
		assert.Equal(t, guardrail.StatusValidationError, result.Status)
		assert.Nil(t, result.FinalText)
		assert.Equal(t, int64(0), later.calls.Load())

		var vErr *guardrail.ValidationError
		require.ErrorAs(t, result.Err, &vErr)
		assert.Equal(t, "strict", vErr.Validator)
		assert.Equal(t, "forbidden content", vErr.Reason)

		require.Len(t, result.Steps, 1)
		aborted := result.Steps[0]
		assert.Nil(t, aborted.Output)
		require.NotNil(t, aborted.Error)
		assert.Equal(t, "forbidden content", *aborted.Error)
	})

	t.Run("rephrase rewrites the text and flags the result", func(t *testing.T) {
		t.Parallel()

		r := guardrail.NewRegistry()
		failing := &stubValidator{name: "soft", fn: func(string) (guardrail.Outcome, error) {
			return guardrail.FailNoFix("unsafe request"), nil
		}}
		registerStub(r, "soft", failing)

		steps := buildSteps(t, r, descriptor("soft", guardrail.OnFailRephrase))

		result := guardrail.Execute(ctx, steps, "sketchy text")
		assert.Equal(t, guardrail.StatusSuccess, result.Status)
		assert.True(t, result.RephraseNeeded)
		require.NotNil(t, result.FinalText)
		assert.Equal(t, guardrail.RephrasePrefix+" unsafe request", *result.FinalText)
	})

	t.Run("validator error is a system error", func(t *testing.T) {
		t.Parallel()

		r := guardrail.NewRegistry()
		boom := errors.New("model backend down")
		failing := &stubValidator{name: "flaky", fn: func(string) (guardrail.Outcome, error) {
			return guardrail.Outcome{}, boom
		}}
		later := passingStub("later")
		registerStub(r, "flaky", failing)
		registerStub(r, "later", later)

		steps := buildSteps(t, r,
			descriptor("flaky", guardrail.OnFailFix),
			descriptor("later", guardrail.OnFailFix),
		)

		result := guardrail.Execute(ctx, steps, "text")
		assert.Equal(t, guardrail.StatusSystemError, result.Status)
		assert.ErrorIs(t, result.Err, boom)
		assert.Equal(t, int64(0), later.calls.Load())
		require.Len(t, result.Steps, 1)
	})

	t.Run("validator panic is contained as a system error", func(t *testing.T) {
		t.Parallel()

		r := guardrail.NewRegistry()
		panicking := &stubValidator{name: "wild", fn: func(string) (guardrail.Outcome, error) {
			panic("nil map write")
		}}
		registerStub(r, "wild", panicking)

		steps := buildSteps(t, r, descriptor("wild", guardrail.OnFailFix))

		result := guardrail.Execute(ctx, steps, "text")
		assert.Equal(t, guardrail.StatusSystemError, result.Status)
		require.Error(t, result.Err)
		assert.Contains(t, result.Err.Error(), "panicked")
	})

	t.Run("missing fix value under fix policy is a system error", func(t *testing.T) {
		t.Parallel()

		r := guardrail.NewRegistry()
		failing := &stubValidator{name: "lazy", fn: func(string) (guardrail.Outcome, error) {
			return guardrail.FailNoFix("bad content"), nil
		}}
		registerStub(r, "lazy", failing)

		steps := buildSteps(t, r, descriptor("lazy", guardrail.OnFailFix))

		result := guardrail.Execute(ctx, steps, "text")
		assert.Equal(t, guardrail.StatusSystemError, result.Status)
		assert.ErrorIs(t, result.Err, guardrail.ErrProviderContract)
	})

	t.Run("canceled context stops the pipeline", func(t *testing.T) {
		t.Parallel()

		r := guardrail.NewRegistry()
		v := passingStub("slow")
		registerStub(r, "slow", v)
		steps := buildSteps(t, r, descriptor("slow", guardrail.OnFailFix))

		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		result := guardrail.Execute(canceled, steps, "text")
		assert.Equal(t, guardrail.StatusSystemError, result.Status)
		assert.ErrorIs(t, result.Err, context.Canceled)
		assert.Equal(t, int64(0), v.calls.Load())
	})

	t.Run("normalizing pass rewrites the running text", func(t *testing.T) {
		t.Parallel()

		r := guardrail.NewRegistry()
		normalizer := &stubValidator{name: "trim", fn: func(string) (guardrail.Outcome, error) {
			return guardrail.Pass("normalized"), nil
		}}
		var seen string
		later := &stubValidator{name: "later", fn: func(text string) (guardrail.Outcome, error) {
			seen = text
			return guardrail.Pass(text), nil
		}}
		registerStub(r, "trim", normalizer)
		registerStub(r, "later", later)

		steps := buildSteps(t, r,
			descriptor("trim", guardrail.OnFailFix),
			descriptor("later", guardrail.OnFailFix),
		)

		result := guardrail.Execute(ctx, steps, "  raw  ")
		assert.Equal(t, guardrail.StatusSuccess, result.Status)
		assert.Equal(t, "normalized", seen)
		assert.Equal(t, "normalized", *result.FinalText)
	})
}
