package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tallytrace/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error", "json")
	os.Exit(m.Run())
}

// scopeRecorder captures what EntityIDFromRequest resolves to inside the
// wrapped handler.
type scopeRecorder struct {
	called   bool
	entityID int64
}

func (s *scopeRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.called = true
		s.entityID = EntityIDFromRequest(r)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestEntityContextMiddlewareHeader(t *testing.T) {
	recorder := &scopeRecorder{}
	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("X-Entity-Id", "7")
	rr := httptest.NewRecorder()

	EntityContextMiddleware(recorder.handler()).ServeHTTP(rr, req)

	assert.True(t, recorder.called)
	assert.Equal(t, int64(7), recorder.entityID)
}

func TestEntityContextMiddlewareQueryFallback(t *testing.T) {
	recorder := &scopeRecorder{}
	req := httptest.NewRequest(http.MethodGet, "/api/accounts?entity_id=3", nil)
	rr := httptest.NewRecorder()

	EntityContextMiddleware(recorder.handler()).ServeHTTP(rr, req)

	assert.True(t, recorder.called)
	assert.Equal(t, int64(3), recorder.entityID)
}

func TestEntityContextMiddlewareHeaderWinsOverQuery(t *testing.T) {
	recorder := &scopeRecorder{}
	req := httptest.NewRequest(http.MethodGet, "/api/accounts?entity_id=9", nil)
	req.Header.Set("X-Entity-Id", "5")
	rr := httptest.NewRecorder()

	EntityContextMiddleware(recorder.handler()).ServeHTTP(rr, req)

	assert.Equal(t, int64(5), recorder.entityID)
}

func TestEntityContextMiddlewareUnscopedByDefault(t *testing.T) {
	recorder := &scopeRecorder{}
	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	rr := httptest.NewRecorder()

	EntityContextMiddleware(recorder.handler()).ServeHTTP(rr, req)

	assert.True(t, recorder.called)
	assert.Equal(t, int64(0), recorder.entityID)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestEntityContextMiddlewareRejectsMalformedScope(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-4", "1.5"} {
		t.Run(raw, func(t *testing.T) {
			recorder := &scopeRecorder{}
			req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
			req.Header.Set("X-Entity-Id", raw)
			rr := httptest.NewRecorder()

			EntityContextMiddleware(recorder.handler()).ServeHTTP(rr, req)

			assert.False(t, recorder.called)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), "invalid entity id")
		})
	}
}

func TestEntityIDFromRequestWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	assert.Equal(t, int64(0), EntityIDFromRequest(req))
}

func TestParseIDParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/accounts/12", nil)
	req.SetPathValue("id", "12")

	id, err := parseIDParam(req)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, raw := range []string{"", "abc", "0", "-2"} {
		req.SetPathValue("id", raw)
		_, err := parseIDParam(req)
		assert.Error(t, err)
	}
}

func TestRecordEntityID(t *testing.T) {
	assert.Equal(t, int64(0), recordEntityID(nil))
	scoped := int64(4)
	assert.Equal(t, int64(4), recordEntityID(&scoped))
}

func TestBoolQueryParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	value, err := boolQueryParam(req, "expense")
	require.NoError(t, err)
	assert.Nil(t, value)

	req = httptest.NewRequest(http.MethodGet, "/api/categories?expense=true", nil)
	value, err = boolQueryParam(req, "expense")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.True(t, *value)

	req = httptest.NewRequest(http.MethodGet, "/api/categories?expense=maybe", nil)
	_, err = boolQueryParam(req, "expense")
	assert.Error(t, err)
}

func TestInt64QueryParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	value, err := int64QueryParam(req, "account_id")
	require.NoError(t, err)
	assert.Nil(t, value)

	req = httptest.NewRequest(http.MethodGet, "/api/transactions?account_id=42", nil)
	value, err = int64QueryParam(req, "account_id")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, int64(42), *value)

	for _, raw := range []string{"zero", "0", "-1"} {
		req = httptest.NewRequest(http.MethodGet, "/api/transactions?account_id="+raw, nil)
		_, err = int64QueryParam(req, "account_id")
		assert.Error(t, err)
	}
}

func TestDateQueryParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	value, err := dateQueryParam(req, "from")
	require.NoError(t, err)
	assert.Empty(t, value)

	req = httptest.NewRequest(http.MethodGet, "/api/transactions?from=2025-03-01", nil)
	value, err = dateQueryParam(req, "from")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", value)

	req = httptest.NewRequest(http.MethodGet, "/api/transactions?from=03%2F01%2F2025", nil)
	_, err = dateQueryParam(req, "from")
	assert.Error(t, err)
}
