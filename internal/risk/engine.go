package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/riskradar/backend-go/internal/domain"
	"github.com/riskradar/backend-go/internal/store"
)

// maxDependentResults bounds the dependent lookup per assessment.
const maxDependentResults = 1000

// Engine resolves a resource's topology context from the graph store and
// scores it.
type Engine struct {
	graph store.GraphStore
	cfg   Config
}

func NewEngine(graph store.GraphStore, cfg Config) *Engine {
	return &Engine{graph: graph, cfg: cfg}
}

// Assess scores one resource as of now.
func (e *Engine) Assess(ctx context.Context, resourceID string, now time.Time) (*domain.RiskAssessment, error) {
	r, err := e.graph.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	edges, err := e.graph.GetEdges(ctx, resourceID, store.DirectionDependents, 1, maxDependentResults)
	if err != nil {
		return nil, fmt.Errorf("resolve dependents for %s: %w", resourceID, err)
	}

	seen := make(map[string]bool, len(edges))
	for _, edge := range edges {
		seen[edge.Source] = true
	}

	a := Score(Input{Resource: *r, Dependents: len(seen), Now: now}, e.cfg)
	return &a, nil
}

// BatchItem is one entry of a batch assessment. Exactly one of Assessment
// and Error is set.
type BatchItem struct {
	ResourceID string                 `json:"resource_id"`
	Assessment *domain.RiskAssessment `json:"assessment,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// AssessBatch scores each resource independently. A failed item never
// blocks the rest of the batch.
func (e *Engine) AssessBatch(ctx context.Context, resourceIDs []string, now time.Time) []BatchItem {
	items := make([]BatchItem, 0, len(resourceIDs))
	for _, id := range resourceIDs {
		item := BatchItem{ResourceID: id}
		if a, err := e.Assess(ctx, id, now); err != nil {
			item.Error = err.Error()
		} else {
			item.Assessment = a
		}
		items = append(items, item)
	}
	return items
}
