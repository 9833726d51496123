package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riskradar/backend-go/internal/domain"
)

// NewPool creates a new pgx connection pool
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	config.MaxConns = 20
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Println("Database connection pool established")
	return pool, nil
}

// PostgresStore is the Postgres-backed GraphStore
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a connection pool as a GraphStore
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the graph tables if they do not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS resources (
			id                  TEXT PRIMARY KEY,
			name                TEXT NOT NULL,
			type                TEXT NOT NULL,
			environment         TEXT NOT NULL DEFAULT '',
			redundant           BOOLEAN NOT NULL DEFAULT FALSE,
			zones               TEXT[] NOT NULL DEFAULT '{}',
			resource_group      TEXT NOT NULL DEFAULT '',
			aliases             TEXT[] NOT NULL DEFAULT '{}',
			deploy_failure_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			last_change         TIMESTAMPTZ,
			labels              JSONB,
			metadata            JSONB
		);
		CREATE TABLE IF NOT EXISTS dependency_edges (
			source     TEXT NOT NULL,
			target     TEXT NOT NULL,
			category   TEXT NOT NULL,
			strength   DOUBLE PRECISION NOT NULL,
			method     TEXT NOT NULL,
			methods    TEXT[] NOT NULL DEFAULT '{}',
			confidence DOUBLE PRECISION NOT NULL,
			cofailure  DOUBLE PRECISION NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (source, target)
		);
		CREATE INDEX IF NOT EXISTS dependency_edges_target_idx ON dependency_edges (target);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// GetResource returns the resource or domain.ErrResourceNotFound
func (s *PostgresStore) GetResource(ctx context.Context, id string) (*domain.Resource, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, type, environment, redundant, zones, resource_group,
		       aliases, deploy_failure_rate, last_change, labels, metadata
		FROM resources WHERE id = $1`, id)

	r, err := scanResource(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrResourceNotFound, id)
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return r, nil
}

// ListResources returns all resources ordered by ID
func (s *PostgresStore) ListResources(ctx context.Context) ([]domain.Resource, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, type, environment, redundant, zones, resource_group,
		       aliases, deploy_failure_rate, last_change, labels, metadata
		FROM resources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var out []domain.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// UpsertResource creates or replaces a resource
func (s *PostgresStore) UpsertResource(ctx context.Context, r domain.Resource) error {
	labels, _ := json.Marshal(r.Labels)
	metadata, _ := json.Marshal(r.Metadata)

	var lastChange pgtype.Timestamptz
	if r.LastChange != nil {
		lastChange = pgtype.Timestamptz{Time: *r.LastChange, Valid: true}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO resources (id, name, type, environment, redundant, zones,
			resource_group, aliases, deploy_failure_rate, last_change, labels, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			environment = EXCLUDED.environment,
			redundant = EXCLUDED.redundant,
			zones = EXCLUDED.zones,
			resource_group = EXCLUDED.resource_group,
			aliases = EXCLUDED.aliases,
			deploy_failure_rate = EXCLUDED.deploy_failure_rate,
			last_change = EXCLUDED.last_change,
			labels = EXCLUDED.labels,
			metadata = EXCLUDED.metadata`,
		r.ID, r.Name, string(r.Type), r.Environment, r.Redundant, r.Zones,
		r.ResourceGroup, r.Aliases, r.DeployFailureRate, lastChange, labels, metadata)
	if err != nil {
		return fmt.Errorf("upsert resource %s: %w", r.ID, err)
	}
	return nil
}

// UpsertEdges writes fused edges; last writer wins per (source, target)
func (s *PostgresStore) UpsertEdges(ctx context.Context, edges []domain.DependencyEdge) error {
	for _, e := range edges {
		methods := make([]string, 0, len(e.Methods))
		for _, m := range e.Methods {
			methods = append(methods, string(m))
		}
		_, err := s.pool.Exec(ctx, `
			INSERT INTO dependency_edges (source, target, category, strength,
				method, methods, confidence, cofailure, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
			ON CONFLICT (source, target) DO UPDATE SET
				category = EXCLUDED.category,
				strength = EXCLUDED.strength,
				method = EXCLUDED.method,
				methods = EXCLUDED.methods,
				confidence = EXCLUDED.confidence,
				cofailure = EXCLUDED.cofailure,
				updated_at = now()`,
			e.Source, e.Target, string(e.Category), e.Strength,
			string(e.Method), methods, e.Confidence, e.CoFailure)
		if err != nil {
			return fmt.Errorf("upsert edge %s->%s: %w", e.Source, e.Target, err)
		}
	}
	return nil
}

// GetEdges walks breadth-first from resourceID, one query per frontier node,
// bounded by maxDepth hops and maxResults edges
func (s *PostgresStore) GetEdges(ctx context.Context, resourceID string, dir Direction, maxDepth, maxResults int) ([]domain.DependencyEdge, error) {
	if maxDepth < 1 || maxResults < 1 {
		return nil, fmt.Errorf("%w: maxDepth=%d maxResults=%d", domain.ErrInvalidParameter, maxDepth, maxResults)
	}

	edges := make([]domain.DependencyEdge, 0)
	visited := map[string]bool{resourceID: true}
	frontier := []string{resourceID}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return edges, err
		}
		var next []string
		for _, id := range frontier {
			adjacent, err := s.adjacent(ctx, id, dir)
			if err != nil {
				return nil, err
			}
			for _, e := range adjacent {
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

func (s *PostgresStore) adjacent(ctx context.Context, id string, dir Direction) ([]domain.DependencyEdge, error) {
	query := `
		SELECT source, target, category, strength, method, methods, confidence, cofailure
		FROM dependency_edges WHERE target = $1 ORDER BY source`
	if dir == DirectionDependencies {
		query = `
		SELECT source, target, category, strength, method, methods, confidence, cofailure
		FROM dependency_edges WHERE source = $1 ORDER BY target`
	}

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query edges for %s: %w", id, err)
	}
	defer rows.Close()

	var out []domain.DependencyEdge
	for rows.Next() {
		var e domain.DependencyEdge
		var category, method string
		var methods []string
		if err := rows.Scan(&e.Source, &e.Target, &category, &e.Strength,
			&method, &methods, &e.Confidence, &e.CoFailure); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.Category = domain.EdgeCategory(category)
		e.Method = domain.DiscoveryMethod(method)
		for _, m := range methods {
			e.Methods = append(e.Methods, domain.DiscoveryMethod(m))
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanResource(row pgx.Row) (*domain.Resource, error) {
	var r domain.Resource
	var typ string
	var lastChange pgtype.Timestamptz
	var labels, metadata []byte

	err := row.Scan(&r.ID, &r.Name, &typ, &r.Environment, &r.Redundant,
		&r.Zones, &r.ResourceGroup, &r.Aliases, &r.DeployFailureRate,
		&lastChange, &labels, &metadata)
	if err != nil {
		return nil, err
	}

	r.Type = domain.ResourceType(typ)
	if lastChange.Valid {
		t := lastChange.Time
		r.LastChange = &t
	}
	if len(labels) > 0 {
		if err := json.Unmarshal(labels, &r.Labels); err != nil {
			log.Printf("Failed to unmarshal labels for resource %s: %v", r.ID, err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &r.Metadata); err != nil {
			log.Printf("Failed to unmarshal metadata for resource %s: %v", r.ID, err)
		}
	}

	// sort for deterministic output regardless of array storage order
	sort.Strings(r.Zones)
	sort.Strings(r.Aliases)
	return &r, nil
}
