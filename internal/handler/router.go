package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riskradar/backend-go/internal/observability"
)

// SetupRouter configures all API routes
func SetupRouter(
	riskH *RiskHandler,
	evidenceH *EvidenceHandler,
	metrics *observability.Metrics,
	corsOrigin string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORSMiddleware(corsOrigin))
	r.Use(PrometheusMiddleware(metrics))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Risk endpoints
	riskGroup := r.Group("/api/risk")
	{
		riskGroup.GET("/assessments/:resource_id", riskH.GetAssessment)
		riskGroup.POST("/assessments", riskH.BatchAssess)
		riskGroup.GET("/assessments/:resource_id/time-adjusted", riskH.AdjustForTime)
		riskGroup.POST("/simulations/:resource_id", riskH.Simulate)
		riskGroup.GET("/blast-radius/:resource_id", riskH.BlastRadius)
		riskGroup.GET("/windows", riskH.OptimalWindows)
		riskGroup.POST("/trends/:resource_id", riskH.AnalyzeTrend)
	}

	// Evidence endpoints
	evidenceGroup := r.Group("/api/evidence")
	{
		evidenceGroup.POST("/aggregations/:resource_id", evidenceH.Aggregate)
		evidenceGroup.GET("/edges/:resource_id", evidenceH.GetEdges)
		evidenceGroup.GET("/resources", evidenceH.ListResources)
		evidenceGroup.POST("/resources", evidenceH.UpsertResource)
	}

	return r
}
