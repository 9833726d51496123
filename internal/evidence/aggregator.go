package evidence

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/riskradar/backend-go/internal/domain"
	"github.com/riskradar/backend-go/internal/store"
)

// Aggregator turns raw collector evidence into fused, confidence-scored
// dependency edges for one resource at a time. Collectors are optional;
// a failed or absent collector degrades the result instead of failing it.
type Aggregator struct {
	graph       store.GraphStore
	connStrings ConnectionStringSource
	logs        LogSource
	metrics     MetricSource
	cfg         Config
}

// NewAggregator creates an Aggregator. Any collector may be nil.
func NewAggregator(graph store.GraphStore, cs ConnectionStringSource, ls LogSource, ms MetricSource, cfg Config) *Aggregator {
	return &Aggregator{
		graph:       graph,
		connStrings: cs,
		logs:        ls,
		metrics:     ms,
		cfg:         cfg,
	}
}

// Result is the outcome of one aggregation run
type Result struct {
	ResourceID   string                  `json:"resource_id"`
	Edges        []domain.DependencyEdge `json:"edges"`
	Degraded     bool                    `json:"degraded"`
	SourceErrors []string                `json:"source_errors,omitempty"`
	Skipped      int                     `json:"skipped_evidence"`
}

// Aggregate collects evidence for resourceID from every available source,
// fuses it into edges, and supersedes the stored edges for the pairs it
// observed. Malformed evidence is skipped and logged; a failed collector
// flags the result degraded; neither aborts the run.
func (a *Aggregator) Aggregate(ctx context.Context, resourceID string, now time.Time) (*Result, error) {
	if _, err := a.graph.GetResource(ctx, resourceID); err != nil {
		return nil, err
	}

	resources, err := a.graph.ListResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	idx := buildIndex(resources)

	result := &Result{ResourceID: resourceID}
	var candidates []Candidate

	if a.connStrings != nil {
		raw, err := a.connStrings.Read(ctx, resourceID)
		if err != nil {
			a.degrade(result, "connection_string", err)
		} else {
			for _, text := range raw {
				cands, err := ExtractFromConnectionString(resourceID, text, idx, a.cfg)
				if err != nil {
					log.Printf("Skipping malformed connection string for %s: %v", resourceID, err)
					result.Skipped++
					continue
				}
				candidates = append(candidates, cands...)
			}
		}
	}

	tr := TimeRange{Start: now.Add(-a.cfg.Lookback), End: now}

	if a.logs != nil {
		entries, err := a.logs.Query(ctx, resourceID, tr)
		if err != nil {
			a.degrade(result, "log", err)
		} else {
			candidates = append(candidates, ExtractFromLogs(resourceID, entries, a.cfg.Lookback, now, idx, a.cfg)...)
		}
	}

	if a.metrics != nil {
		series, err := a.metrics.Query(ctx, resourceID, tr)
		if err != nil {
			a.degrade(result, "metric", err)
		} else {
			candidates = append(candidates, ExtractFromMetrics(resourceID, series, a.cfg.Lookback, now, a.cfg)...)
		}
	}

	candidates = append(candidates, a.groupFallback(resourceID, resources, candidates)...)

	result.Edges = Fuse(candidates, a.cfg)

	if len(result.Edges) > 0 {
		if err := a.graph.UpsertEdges(ctx, result.Edges); err != nil {
			return result, fmt.Errorf("upsert edges: %w", err)
		}
	}
	return result, nil
}

// groupFallback emits the lowest-priority resource-group candidates for
// group co-members that have no other observed evidence
func (a *Aggregator) groupFallback(resourceID string, resources []domain.Resource, observed []Candidate) []Candidate {
	var group string
	for _, r := range resources {
		if r.ID == resourceID {
			group = r.ResourceGroup
			break
		}
	}
	if group == "" {
		return nil
	}

	hasEvidence := make(map[string]bool, len(observed))
	for _, c := range observed {
		hasEvidence[c.Target] = true
	}

	var out []Candidate
	for _, r := range resources {
		if r.ID == resourceID || r.ResourceGroup != group || hasEvidence[r.ID] {
			continue
		}
		out = append(out, Candidate{
			Source:     resourceID,
			Target:     r.ID,
			Method:     domain.MethodResourceGroup,
			Category:   domain.CategoryConfiguration,
			Confidence: a.cfg.ResourceGroupConfidence,
			Strength:   0.3,
			Detail:     fmt.Sprintf("shared resource group %s", group),
		})
	}
	return out
}

// degrade records a collector failure; aggregation continues on the
// remaining sources
func (a *Aggregator) degrade(result *Result, source string, err error) {
	log.Printf("Evidence source %s unavailable for %s: %v", source, result.ResourceID, err)
	result.Degraded = true
	result.SourceErrors = append(result.SourceErrors, fmt.Sprintf("%s: %v", source, err))
}
