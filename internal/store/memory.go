package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskradar/backend-go/internal/domain"
)

// MemoryStore is an in-memory GraphStore. It backs tests and DB-less
// deployments; reads are safe for concurrent callers.
type MemoryStore struct {
	mu        sync.RWMutex
	resources map[string]domain.Resource
	outgoing  map[string]map[string]domain.DependencyEdge // source -> target -> edge
	incoming  map[string]map[string]domain.DependencyEdge // target -> source -> edge
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		resources: make(map[string]domain.Resource),
		outgoing:  make(map[string]map[string]domain.DependencyEdge),
		incoming:  make(map[string]map[string]domain.DependencyEdge),
	}
}

// GetResource returns the resource or domain.ErrResourceNotFound
func (s *MemoryStore) GetResource(ctx context.Context, id string) (*domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resources[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrResourceNotFound, id)
	}
	return &r, nil
}

// ListResources returns all resources ordered by ID
func (s *MemoryStore) ListResources(ctx context.Context) ([]domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Resource, 0, len(s.resources))
	for _, r := range s.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpsertResource creates or replaces a resource
func (s *MemoryStore) UpsertResource(ctx context.Context, r domain.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[r.ID] = r
	return nil
}

// UpsertEdges writes edges, superseding prior (source, target) entries
func (s *MemoryStore) UpsertEdges(ctx context.Context, edges []domain.DependencyEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range edges {
		if s.outgoing[e.Source] == nil {
			s.outgoing[e.Source] = make(map[string]domain.DependencyEdge)
		}
		if s.incoming[e.Target] == nil {
			s.incoming[e.Target] = make(map[string]domain.DependencyEdge)
		}
		s.outgoing[e.Source][e.Target] = e
		s.incoming[e.Target][e.Source] = e
	}
	return nil
}

// GetEdges walks breadth-first from resourceID, bounded by maxDepth hops and
// maxResults edges. Neighbors are visited in sorted order so output is
// deterministic; a visited set guarantees termination on cyclic graphs.
func (s *MemoryStore) GetEdges(ctx context.Context, resourceID string, dir Direction, maxDepth, maxResults int) ([]domain.DependencyEdge, error) {
	if maxDepth < 1 || maxResults < 1 {
		return nil, fmt.Errorf("%w: maxDepth=%d maxResults=%d", domain.ErrInvalidParameter, maxDepth, maxResults)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := make([]domain.DependencyEdge, 0)
	visited := map[string]bool{resourceID: true}
	frontier := []string{resourceID}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return edges, err
		}
		var next []string
		for _, id := range frontier {
			for _, e := range s.adjacentSorted(id, dir) {
				if len(edges) >= maxResults {
					return edges, nil
				}
				edges = append(edges, e)
				n := Neighbor(e, dir)
				if !visited[n] {
					visited[n] = true
					next = append(next, n)
				}
			}
		}
		frontier = next
	}
	return edges, nil
}

func (s *MemoryStore) adjacentSorted(id string, dir Direction) []domain.DependencyEdge {
	var adj map[string]domain.DependencyEdge
	if dir == DirectionDependents {
		adj = s.incoming[id]
	} else {
		adj = s.outgoing[id]
	}

	keys := make([]string, 0, len(adj))
	for k := range adj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.DependencyEdge, 0, len(keys))
	for _, k := range keys {
		out = append(out, adj[k])
	}
	return out
}
