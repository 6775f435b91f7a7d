package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/lineagemap/pkg/lineage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	s := New(Config{Host: "127.0.0.1", Port: 0})
	r := chi.NewMux()
	s.setupRoutes(r)
	return r
}

func TestHandleIndex(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "vis-network")
}

func TestHandleMap_ValidSQL(t *testing.T) {
	r := newTestRouter(t)

	body := `{"sql": "INSERT INTO sales_summary SELECT * FROM raw_sales"}`
	req := httptest.NewRequest(http.MethodPost, "/map", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result lineage.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Nodes, 2)
	require.Len(t, result.Edges, 1)
	assert.Equal(t, "raw_sales", result.Edges[0].From)
	assert.Equal(t, "sales_summary", result.Edges[0].To)
}

func TestHandleMap_MalformedSQL(t *testing.T) {
	r := newTestRouter(t)

	body := `{"sql": "SELEC * FORM x"}`
	req := httptest.NewRequest(http.MethodPost, "/map", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// Resolution failure is not an HTTP error: the contract is empty lists.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"nodes": [], "edges": []}`, rec.Body.String())
}

func TestHandleMap_InvalidBody(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/map", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
