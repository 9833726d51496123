package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/riskradar/backend-go/internal/domain"
	"github.com/riskradar/backend-go/internal/evidence"
	"github.com/riskradar/backend-go/internal/observability"
	"github.com/riskradar/backend-go/internal/risk"
	"github.com/riskradar/backend-go/internal/schedule"
	"github.com/riskradar/backend-go/internal/simulate"
	"github.com/riskradar/backend-go/internal/store"
	"github.com/riskradar/backend-go/internal/trend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph(t *testing.T) *store.MemoryStore {
	t.Helper()
	g := store.NewMemoryStore()
	ctx := context.Background()

	for _, r := range []domain.Resource{
		{ID: "db-prod-001", Name: "orders-db", Type: domain.ResourceDatabase, Zones: []string{"az-a", "az-b", "az-c"}},
		{ID: "svc-a", Name: "orders-api", Type: domain.ResourceService, Redundant: true},
		{ID: "svc-b", Name: "billing", Type: domain.ResourceService},
	} {
		require.NoError(t, g.UpsertResource(ctx, r))
	}
	require.NoError(t, g.UpsertEdges(ctx, []domain.DependencyEdge{
		{Source: "svc-a", Target: "db-prod-001", Category: domain.CategoryData, Strength: 0.9, Confidence: 0.9},
		{Source: "svc-b", Target: "db-prod-001", Category: domain.CategoryData, Strength: 0.8, Confidence: 0.85},
	}))
	return g
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	g := testGraph(t)
	metrics := observability.NewMetricsWith(prometheus.NewRegistry())

	riskH := NewRiskHandler(
		risk.NewEngine(g, risk.DefaultConfig()),
		simulate.NewSimulator(g, simulate.DefaultConfig()),
		schedule.DefaultConfig(),
		trend.DefaultConfig(),
		metrics,
	)
	evidenceH := NewEvidenceHandler(
		evidence.NewAggregator(g, nil, nil, nil, evidence.DefaultConfig()),
		g,
		metrics,
	)
	return SetupRouter(riskH, evidenceH, metrics, "http://localhost:5173")
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestGetAssessment(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, "GET", "/api/risk/assessments/db-prod-001", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "db-prod-001", body["resource_id"])
	assert.Equal(t, true, body["is_spof"])
	assert.Equal(t, float64(2), body["dependents"])
	assert.NotEmpty(t, body["factors"])
}

func TestGetAssessmentNotFound(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, "GET", "/api/risk/assessments/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, body["detail"], "missing")
}

func TestBatchAssessIsolatesFailures(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, "POST", "/api/risk/assessments",
		`{"resource_ids": ["db-prod-001", "missing", "svc-a"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	items := body["items"].([]any)
	require.Len(t, items, 3)

	first := items[0].(map[string]any)
	assert.NotNil(t, first["assessment"])

	second := items[1].(map[string]any)
	assert.Nil(t, second["assessment"])
	assert.NotEmpty(t, second["error"])
}

func TestBatchAssessValidation(t *testing.T) {
	r := setupTestRouter(t)

	w, _ := doJSON(t, r, "POST", "/api/risk/assessments", `{"resource_ids": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimulateEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, "POST", "/api/risk/simulations/db-prod-001",
		`{"scenario_kind": "degraded_performance", "params": {"current_load": 0.8}}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "degraded_performance", body["scenario_kind"])
	assert.NotEmpty(t, body["outcomes"])
	assert.NotEmpty(t, body["affected"])
}

func TestSimulateUnknownScenarioEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, _ := doJSON(t, r, "POST", "/api/risk/simulations/db-prod-001",
		`{"scenario_kind": "solar_flare"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimulateInvalidLoadEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, _ := doJSON(t, r, "POST", "/api/risk/simulations/db-prod-001",
		`{"scenario_kind": "degraded_performance", "params": {"current_load": 2.5}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBlastRadiusEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, "GET", "/api/risk/blast-radius/db-prod-001", "")
	require.Equal(t, http.StatusOK, w.Code)

	affected := body["affected"].([]any)
	assert.Len(t, affected, 2)
}

func TestAdjustForTimeEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	// a weekday peak hour
	w, body := doJSON(t, r, "GET",
		"/api/risk/assessments/db-prod-001/time-adjusted?timestamp=2026-08-19T09:30:00Z", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotZero(t, body["base_score"])
	assert.NotZero(t, body["adjusted_score"])
	assert.Greater(t, body["multiplier"], 1.0)
	assert.NotEmpty(t, body["factors"])
}

func TestAdjustForTimeBadTimestamp(t *testing.T) {
	r := setupTestRouter(t)

	w, _ := doJSON(t, r, "GET",
		"/api/risk/assessments/db-prod-001/time-adjusted?timestamp=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptimalWindowsEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, "GET", "/api/risk/windows?horizon_days=2&top_n=3", "")
	require.Equal(t, http.StatusOK, w.Code)

	windows := body["windows"].([]any)
	assert.Len(t, windows, 3)
}

func TestAnalyzeTrendEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, "POST", "/api/risk/trends/db-prod-001", `{
		"snapshots": [
			{"timestamp": "2026-08-01T00:00:00Z", "score": 40, "level": "medium"},
			{"timestamp": "2026-08-02T00:00:00Z", "score": 45, "level": "medium"},
			{"timestamp": "2026-08-03T00:00:00Z", "score": 52, "level": "high"}
		]
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "degrading", body["direction"])
	assert.NotNil(t, body["prediction"])
}

func TestAnalyzeTrendInsufficientData(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, "POST", "/api/risk/trends/db-prod-001", `{"snapshots": []}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "insufficient_data", body["status"])
}

func TestHealthEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	w, body := doJSON(t, r, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestCORSMiddleware(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest("OPTIONS", "/api/risk/windows", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
