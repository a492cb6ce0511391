package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/lsequity/internal/api/handlers"
	"github.com/wonny/lsequity/internal/contracts"
	"github.com/wonny/lsequity/internal/metrics"
	"github.com/wonny/lsequity/internal/selection"
	"github.com/wonny/lsequity/pkg/logger"
)

func newTestRouter(t *testing.T) (http.Handler, *selection.MemoryStore) {
	t.Helper()

	ranker, err := selection.NewRanker(selection.Config{
		StrategyID:      "long_short_value",
		Factors:         []string{"value", "size"},
		Weights:         []float64{1, 1},
		LowerPercentile: 0,
		UpperPercentile: 1,
		TotalPositions:  2,
	}, logger.NewNop())
	require.NoError(t, err)

	store := selection.NewMemoryStore()
	m := metrics.New()
	m.SetPositions("long_short_value", 12)

	router := NewRouter(Handlers{
		Selection: handlers.NewSelectionHandler(store, "long_short_value", logger.NewNop()),
		Ranking:   handlers.NewRankingHandler(ranker, []string{"value", "size"}, logger.NewNop()),
		Metrics:   m.Handler(),
	}, logger.NewNop())

	return router, store
}

func do(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lsequity_positions")
}

func TestLatestSelection(t *testing.T) {
	router, store := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/selection/latest", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	longs, shorts := selection.Select(map[string]float64{"A": 1, "B": -1}, 2)
	require.NoError(t, store.SaveLatest(context.Background(), &contracts.RankedSelection{
		StrategyID: "long_short_value",
		Date:       time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		Longs:      longs,
		Shorts:     shorts,
	}))

	rec = do(t, router, http.MethodGet, "/api/selection/latest?strategy=long_short_value", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got contracts.RankedSelection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "A", got.Longs[0].Security)
	assert.Equal(t, "B", got.Shorts[0].Security)

	rec = do(t, router, http.MethodGet, "/api/selection/latest?strategy=other", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRank(t *testing.T) {
	router, _ := newTestRouter(t)

	body := []byte(`{
		"date": "2026-10-19",
		"records": [
			{"security": "A", "values": {"value": 3, "size": 3}},
			{"security": "B", "values": {"value": 2, "size": null}},
			{"security": "C", "values": {"value": 1, "size": 1}},
			{"security": "D", "values": {}}
		]
	}`)

	rec := do(t, router, http.MethodPost, "/api/rank", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got contracts.RankedSelection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, 4, got.Universe)
	assert.Equal(t, 3, got.Eligible, "D has no defined factor")
	require.Len(t, got.Longs, 1)
	require.Len(t, got.Shorts, 1)
	assert.Equal(t, "A", got.Longs[0].Security)
	assert.Equal(t, "C", got.Shorts[0].Security)
}

func TestRank_UniverseRestricts(t *testing.T) {
	router, _ := newTestRouter(t)

	body := []byte(`{
		"universe": ["B", "C"],
		"records": [
			{"security": "A", "values": {"value": 9}},
			{"security": "B", "values": {"value": 2}},
			{"security": "C", "values": {"value": 1}}
		]
	}`)

	rec := do(t, router, http.MethodPost, "/api/rank", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var got contracts.RankedSelection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "B", got.Longs[0].Security)
	assert.Equal(t, "C", got.Shorts[0].Security)
}

func TestRank_Validation(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"records": [`},
		{"no records", `{"records": []}`},
		{"missing security", `{"records": [{"values": {"value": 1}}]}`},
		{"bad date", `{"date": "19/10/2026", "records": [{"security": "A"}]}`},
		{"empty universe member", `{"universe": [""], "records": [{"security": "A"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/rank", []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/rank", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
