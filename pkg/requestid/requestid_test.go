package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentguard/gateway/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	serve := func(t *testing.T, inbound string) (string, *httptest.ResponseRecorder) {
		t.Helper()

		var fromCtx string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fromCtx = requestid.FromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if inbound != "" {
			req.Header.Set(requestid.Header, inbound)
		}
		rec := httptest.NewRecorder()
		requestid.Middleware(next).ServeHTTP(rec, req)
		return fromCtx, rec
	}

	t.Run("propagates a valid inbound id", func(t *testing.T) {
		t.Parallel()

		fromCtx, rec := serve(t, "client-id_42")
		assert.Equal(t, "client-id_42", fromCtx)
		assert.Equal(t, "client-id_42", rec.Header().Get(requestid.Header))
	})

	t.Run("mints a uuid when absent", func(t *testing.T) {
		t.Parallel()

		fromCtx, rec := serve(t, "")
		_, err := uuid.Parse(fromCtx)
		require.NoError(t, err)
		assert.Equal(t, fromCtx, rec.Header().Get(requestid.Header))
	})

	t.Run("replaces ids with invalid characters", func(t *testing.T) {
		t.Parallel()

		fromCtx, _ := serve(t, "bad id!")
		_, err := uuid.Parse(fromCtx)
		assert.NoError(t, err)
	})

	t.Run("replaces oversized ids", func(t *testing.T) {
		t.Parallel()

		fromCtx, _ := serve(t, strings.Repeat("a", 200))
		_, err := uuid.Parse(fromCtx)
		assert.NoError(t, err)
	})
}

func TestLogExtractor(t *testing.T) {
	t.Parallel()

	extract := requestid.LogExtractor()

	attr, ok := extract(requestid.WithContext(context.Background(), "req-1"))
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "req-1", attr.Value.String())

	_, ok = extract(context.Background())
	assert.False(t, ok)
}
