package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/riskradar/backend-go/internal/domain"
	"github.com/riskradar/backend-go/internal/evidence"
	"github.com/riskradar/backend-go/internal/observability"
	"github.com/riskradar/backend-go/internal/store"
)

// EvidenceHandler handles aggregation runs and graph inspection endpoints.
type EvidenceHandler struct {
	aggregator *evidence.Aggregator
	graph      store.GraphStore
	metrics    *observability.Metrics
}

// NewEvidenceHandler creates a new EvidenceHandler
func NewEvidenceHandler(aggregator *evidence.Aggregator, graph store.GraphStore, metrics *observability.Metrics) *EvidenceHandler {
	return &EvidenceHandler{
		aggregator: aggregator,
		graph:      graph,
		metrics:    metrics,
	}
}

// Aggregate runs evidence collection and fusion for one resource
func (h *EvidenceHandler) Aggregate(c *gin.Context) {
	resourceID := c.Param("resource_id")
	runID := uuid.New().String()[:8]

	result, err := h.aggregator.Aggregate(c.Request.Context(), resourceID, time.Now().UTC())
	if err != nil {
		h.metrics.RecordAggregation("error", 0)
		c.JSON(statusFor(err), gin.H{"detail": err.Error(), "run_id": runID})
		return
	}

	status := "ok"
	if result.Degraded {
		status = "degraded"
	}
	h.metrics.RecordAggregation(status, len(result.Edges))
	for _, e := range result.Edges {
		h.metrics.EvidenceCandidatesTotal.WithLabelValues(string(e.Method)).Inc()
	}

	c.JSON(http.StatusOK, gin.H{"run_id": runID, "result": result})
}

// GetEdges walks the graph from one resource
func (h *EvidenceHandler) GetEdges(c *gin.Context) {
	resourceID := c.Param("resource_id")

	dir := store.DirectionDependents
	if c.Query("direction") == string(store.DirectionDependencies) {
		dir = store.DirectionDependencies
	}

	maxDepth := queryInt(c, "max_depth")
	if maxDepth == 0 {
		maxDepth = 1
	}
	maxResults := queryInt(c, "max_results")
	if maxResults == 0 {
		maxResults = 100
	}

	edges, err := h.graph.GetEdges(c.Request.Context(), resourceID, dir, maxDepth, maxResults)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resource_id": resourceID, "direction": dir, "edges": edges})
}

// ListResources returns every known resource
func (h *EvidenceHandler) ListResources(c *gin.Context) {
	resources, err := h.graph.ListResources(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

// UpsertResource creates or replaces a resource (discovery/refresh surface)
func (h *EvidenceHandler) UpsertResource(c *gin.Context) {
	var r domain.Resource
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if r.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "id is required"})
		return
	}

	if err := h.graph.UpsertResource(c.Request.Context(), r); err != nil {
		c.JSON(statusFor(err), gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resource_id": r.ID})
}
