package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/riskradar/backend-go/internal/domain"
	"github.com/riskradar/backend-go/internal/observability"
	"github.com/riskradar/backend-go/internal/risk"
	"github.com/riskradar/backend-go/internal/schedule"
	"github.com/riskradar/backend-go/internal/simulate"
	"github.com/riskradar/backend-go/internal/trend"
)

// RiskHandler handles assessment, simulation, scheduling, and trend
// endpoints.
type RiskHandler struct {
	engine      *risk.Engine
	simulator   *simulate.Simulator
	scheduleCfg schedule.Config
	trendCfg    trend.Config
	metrics     *observability.Metrics
}

// NewRiskHandler creates a new RiskHandler
func NewRiskHandler(
	engine *risk.Engine,
	simulator *simulate.Simulator,
	scheduleCfg schedule.Config,
	trendCfg trend.Config,
	metrics *observability.Metrics,
) *RiskHandler {
	return &RiskHandler{
		engine:      engine,
		simulator:   simulator,
		scheduleCfg: scheduleCfg,
		trendCfg:    trendCfg,
		metrics:     metrics,
	}
}

// statusFor maps domain sentinel errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidParameter),
		errors.Is(err, domain.ErrUnknownScenario),
		errors.Is(err, domain.ErrMalformedEvidence):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrCollectorUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetAssessment scores one resource
func (h *RiskHandler) GetAssessment(c *gin.Context) {
	resourceID := c.Param("resource_id")
	start := time.Now()

	assessment, err := h.engine.Assess(c.Request.Context(), resourceID, time.Now().UTC())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"detail": err.Error()})
		return
	}

	h.metrics.RecordAssessment(string(assessment.Level), time.Since(start).Seconds())
	c.JSON(http.StatusOK, assessment)
}

// BatchAssess scores several resources; one failure never blocks the rest
func (h *RiskHandler) BatchAssess(c *gin.Context) {
	var req struct {
		ResourceIDs []string `json:"resource_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	items := h.engine.AssessBatch(c.Request.Context(), req.ResourceIDs, time.Now().UTC())
	for _, item := range items {
		if item.Assessment != nil {
			h.metrics.AssessmentsTotal.WithLabelValues(string(item.Assessment.Level)).Inc()
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Simulate runs a failure scenario for one resource
func (h *RiskHandler) Simulate(c *gin.Context) {
	resourceID := c.Param("resource_id")

	var req struct {
		ScenarioKind domain.ScenarioKind `json:"scenario_kind" binding:"required"`
		Params       simulate.Params     `json:"params"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	scenario, err := h.simulator.Simulate(c.Request.Context(), resourceID, req.ScenarioKind, req.Params)
	if err != nil {
		h.metrics.RecordSimulation(string(req.ScenarioKind), "error")
		c.JSON(statusFor(err), gin.H{"detail": err.Error()})
		return
	}

	h.metrics.RecordSimulation(string(req.ScenarioKind), "ok")
	c.JSON(http.StatusOK, scenario)
}

// BlastRadius returns the statically reachable dependents
func (h *RiskHandler) BlastRadius(c *gin.Context) {
	resourceID := c.Param("resource_id")

	affected, err := h.simulator.BlastRadius(c.Request.Context(), resourceID,
		queryInt(c, "max_depth"), queryInt(c, "max_results"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resource_id": resourceID, "affected": affected})
}

// AdjustForTime rescales a resource's score for a proposed change time
func (h *RiskHandler) AdjustForTime(c *gin.Context) {
	resourceID := c.Param("resource_id")

	ts := time.Now().UTC()
	if raw := c.Query("timestamp"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "timestamp must be RFC3339"})
			return
		}
		ts = parsed
	}

	assessment, err := h.engine.Assess(c.Request.Context(), resourceID, time.Now().UTC())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"detail": err.Error()})
		return
	}

	adj := schedule.Adjust(assessment.Score, ts, h.scheduleCfg)
	c.JSON(http.StatusOK, gin.H{
		"resource_id":    resourceID,
		"timestamp":      ts,
		"base_score":     adj.BaseScore,
		"adjusted_score": adj.AdjustedScore,
		"multiplier":     adj.Multiplier,
		"factors":        adj.Factors,
	})
}

// OptimalWindows lists the lowest-risk change slots over a horizon
func (h *RiskHandler) OptimalWindows(c *gin.Context) {
	windows, err := schedule.OptimalWindows(time.Now().UTC(),
		queryInt(c, "horizon_days"), queryInt(c, "top_n"), h.scheduleCfg)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"windows": windows})
}

// AnalyzeTrend computes trend direction, anomalies, and a prediction from
// caller-supplied snapshots
func (h *RiskHandler) AnalyzeTrend(c *gin.Context) {
	resourceID := c.Param("resource_id")

	var req struct {
		Snapshots []domain.RiskSnapshot `json:"snapshots"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, trend.Analyze(resourceID, req.Snapshots, h.trendCfg))
}

// queryInt parses an optional integer query parameter; absent or malformed
// values return 0 so the component defaults apply. Negative values pass
// through for the components to reject.
func queryInt(c *gin.Context, key string) int {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
