package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/riskradar/backend-go/internal/domain"
	"github.com/riskradar/backend-go/internal/store"
)

// Simulator runs blast-radius traversals and failure scenarios over the
// graph store. It is read-only and safe for concurrent use.
type Simulator struct {
	graph store.GraphStore
	cfg   Config
}

func NewSimulator(graph store.GraphStore, cfg Config) *Simulator {
	return &Simulator{graph: graph, cfg: cfg}
}

// affectedNode carries the resource type alongside the wire shape so the
// scenario generator can pick the right failure-mode row.
type affectedNode struct {
	domain.AffectedResource
	resourceType domain.ResourceType
	redundant    bool
}

// BlastRadius walks the dependents of resourceID breadth-first up to
// maxDepth hops and maxResults resources (zero picks the configured
// defaults, negatives are rejected). Each affected resource carries the
// cascade probability accumulated along its shortest discovery path.
func (s *Simulator) BlastRadius(ctx context.Context, resourceID string, maxDepth, maxResults int) ([]domain.AffectedResource, error) {
	nodes, err := s.blastRadius(ctx, resourceID, maxDepth, maxResults)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AffectedResource, len(nodes))
	for i, n := range nodes {
		out[i] = n.AffectedResource
	}
	return out, nil
}

func (s *Simulator) blastRadius(ctx context.Context, resourceID string, maxDepth, maxResults int) ([]affectedNode, error) {
	if maxDepth < 0 || maxResults < 0 {
		return nil, fmt.Errorf("%w: max_depth and max_results must be >= 0", domain.ErrInvalidParameter)
	}
	if maxDepth == 0 {
		maxDepth = s.cfg.MaxDepth
	}
	if maxResults == 0 {
		maxResults = s.cfg.MaxResults
	}

	if _, err := s.graph.GetResource(ctx, resourceID); err != nil {
		return nil, err
	}

	type item struct {
		id          string
		distance    int
		probability float64
	}

	visited := map[string]bool{resourceID: true}
	queue := []item{{id: resourceID, probability: 1.0}}
	var out []affectedNode

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur := queue[0]
		queue = queue[1:]
		if cur.distance >= maxDepth {
			continue
		}

		edges, err := s.graph.GetEdges(ctx, cur.id, store.DirectionDependents, 1, maxResults)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", cur.id, err)
		}
		sort.Slice(edges, func(i, j int) bool { return edges[i].Source < edges[j].Source })

		for _, e := range edges {
			dep := e.Source
			if visited[dep] {
				continue
			}
			visited[dep] = true

			r, err := s.graph.GetResource(ctx, dep)
			if err != nil {
				if errors.Is(err, domain.ErrResourceNotFound) {
					// dangling edge from a superseded discovery run
					continue
				}
				return nil, err
			}

			p := cur.probability * s.cascadeProbability(e, r.Redundant)
			out = append(out, affectedNode{
				AffectedResource: domain.AffectedResource{
					ResourceID:         dep,
					Distance:           cur.distance + 1,
					CascadeProbability: round2(p),
				},
				resourceType: r.Type,
				redundant:    r.Redundant,
			})
			if len(out) >= maxResults {
				return out, nil
			}
			queue = append(queue, item{id: dep, distance: cur.distance + 1, probability: p})
		}
	}
	return out, nil
}

// cascadeProbability combines edge strength with any historical co-failure
// correlation (noisy-OR), then damps the result when the dependent is
// redundant. With neither correlation nor redundancy it is the raw edge
// strength.
func (s *Simulator) cascadeProbability(e domain.DependencyEdge, targetRedundant bool) float64 {
	p := 1 - (1-clamp01(e.Strength))*(1-clamp01(e.CoFailure))
	if targetRedundant {
		p *= s.cfg.RedundancyDamping
	}
	return clamp01(p)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
