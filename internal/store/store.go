package store

import (
	"context"

	"github.com/riskradar/backend-go/internal/domain"
)

// Direction selects which way edges are followed from a resource
type Direction string

const (
	// DirectionDependents follows edges toward resources that depend on the
	// starting resource (edge target == resource)
	DirectionDependents Direction = "dependents"
	// DirectionDependencies follows edges toward resources the starting
	// resource depends on (edge source == resource)
	DirectionDependencies Direction = "dependencies"
)

// GraphStore is the typed interface over the property-graph backing store.
// The engine issues only these operations, never raw query strings.
type GraphStore interface {
	// GetResource returns the resource or domain.ErrResourceNotFound
	GetResource(ctx context.Context, id string) (*domain.Resource, error)

	// ListResources returns all resources, ordered by ID
	ListResources(ctx context.Context) ([]domain.Resource, error)

	// UpsertResource creates or replaces a resource (attribute refresh)
	UpsertResource(ctx context.Context, r domain.Resource) error

	// GetEdges walks the graph from resourceID in the given direction up to
	// maxDepth hops, returning at most maxResults edges in breadth-first
	// order. maxDepth and maxResults must be >= 1.
	GetEdges(ctx context.Context, resourceID string, dir Direction, maxDepth, maxResults int) ([]domain.DependencyEdge, error)

	// UpsertEdges writes fused edges, superseding any prior edge for the
	// same (source, target) pair. Last writer wins.
	UpsertEdges(ctx context.Context, edges []domain.DependencyEdge) error
}

// Neighbor returns the resource on the far side of an edge for a direction
func Neighbor(e domain.DependencyEdge, dir Direction) string {
	if dir == DirectionDependents {
		return e.Source
	}
	return e.Target
}
