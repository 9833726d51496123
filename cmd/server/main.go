package main

import (
	"context"
	"log"

	"github.com/riskradar/backend-go/internal/collector"
	"github.com/riskradar/backend-go/internal/config"
	"github.com/riskradar/backend-go/internal/evidence"
	"github.com/riskradar/backend-go/internal/handler"
	"github.com/riskradar/backend-go/internal/observability"
	"github.com/riskradar/backend-go/internal/risk"
	"github.com/riskradar/backend-go/internal/schedule"
	"github.com/riskradar/backend-go/internal/simulate"
	"github.com/riskradar/backend-go/internal/store"
	"github.com/riskradar/backend-go/internal/trend"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Graph store: Postgres when reachable, in-memory otherwise
	var graph store.GraphStore
	if pool, err := store.NewPool(ctx, cfg.DatabaseURL); err != nil {
		log.Printf("Database unavailable, using in-memory graph store: %v", err)
		graph = store.NewMemoryStore()
	} else {
		pg := store.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		graph = pg
	}

	// Evidence collectors are optional; a missing one degrades aggregation
	// instead of blocking startup
	var connStrings evidence.ConnectionStringSource
	var logs evidence.LogSource
	if k8s, err := collector.NewK8sCollector(cfg.KubeConfig, cfg.K8sNamespace, graph); err != nil {
		log.Printf("Kubernetes collector unavailable: %v", err)
	} else {
		connStrings = k8s
		logs = k8s
		if _, err := k8s.RefreshAttributes(ctx); err != nil {
			log.Printf("K8s attribute refresh failed: %v", err)
		}
	}

	var metricsSource evidence.MetricSource
	if cfg.PromEndpoint != "" {
		metricsSource = collector.NewPromMetricSource(collector.PromConfig{Endpoint: cfg.PromEndpoint})
	}

	if aws, err := collector.NewAWSCollector(ctx, cfg.AWSRegion, graph); err != nil {
		log.Printf("AWS collector unavailable: %v", err)
	} else if _, err := aws.RefreshAttributes(ctx); err != nil {
		log.Printf("AWS attribute refresh failed: %v", err)
	}

	metrics := observability.NewMetrics()

	simCfg := simulate.DefaultConfig()
	simCfg.MaxDepth = cfg.MaxDepth
	simCfg.MaxResults = cfg.MaxResults

	riskH := handler.NewRiskHandler(
		risk.NewEngine(graph, risk.DefaultConfig()),
		simulate.NewSimulator(graph, simCfg),
		schedule.DefaultConfig(),
		trend.DefaultConfig(),
		metrics,
	)
	evidenceH := handler.NewEvidenceHandler(
		evidence.NewAggregator(graph, connStrings, logs, metricsSource, evidence.DefaultConfig()),
		graph,
		metrics,
	)

	r := handler.SetupRouter(riskH, evidenceH, metrics, cfg.CORSAllowOrigin)

	log.Printf("RiskRadar backend-go starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
