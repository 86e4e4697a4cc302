package results

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/dse-2025.net/internal/adapter/filestore"
	"gitlab.com/dse-2025.net/internal/adapter/logging"
	resultsvc "gitlab.com/dse-2025.net/internal/core/services/results"
	"gitlab.com/dse-2025.net/internal/domain"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	ctx := context.Background()

	backend, err := filestore.NewFileBackend(
		filepath.Join(t.TempDir(), "dse.db"), logging.NewNopLogger())
	require.NoError(t, err)

	store := resultsvc.NewResultStore(backend, logging.NewNopLogger())
	require.NoError(t, store.Load(ctx))

	for key, quality := range map[string]float64{"p1": 5, "p2": 3} {
		result := domain.NewResult(key)
		result.Quality = quality
		result.RetCode = domain.RetValid
		result.Valid = true
		require.NoError(t, store.Commit(ctx, key, result))
	}

	router := mux.NewRouter()
	info := StoreInfo{Name: "dse", Backend: "file"}
	NewHandler(store, info, logging.NewNopLogger()).Register(router)
	return router
}

func doGet(t *testing.T, router *mux.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetCount(t *testing.T) {
	router := newTestRouter(t)

	rec := doGet(t, router, "/api/results/count")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body["count"])
}

func TestGetBest(t *testing.T) {
	router := newTestRouter(t)

	rec := doGet(t, router, "/api/results/best?n=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var best []domain.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &best))
	require.Len(t, best, 1)
	assert.Equal(t, "p2", best[0].Key)

	// Peeking must not consume the cache.
	rec = doGet(t, router, "/api/results/best")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &best))
	assert.Len(t, best, 2)
}

func TestGetBestInvalidN(t *testing.T) {
	router := newTestRouter(t)

	rec := doGet(t, router, "/api/results/best?n=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetResult(t *testing.T) {
	router := newTestRouter(t)

	rec := doGet(t, router, "/api/results/p1")
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "p1", result.Key)
	assert.Equal(t, 5.0, result.Quality)
}

func TestGetResultNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doGet(t, router, "/api/results/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetInfo(t *testing.T) {
	router := newTestRouter(t)

	rec := doGet(t, router, "/api/info")
	require.Equal(t, http.StatusOK, rec.Code)

	var info StoreInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "dse", info.Name)
	assert.Equal(t, "file", info.Backend)
}
