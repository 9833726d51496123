package simulate

import (
	"context"
	"testing"

	"github.com/riskradar/backend-go/internal/domain"
	"github.com/riskradar/backend-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simGraph(t *testing.T) *store.MemoryStore {
	t.Helper()
	g := store.NewMemoryStore()
	ctx := context.Background()

	for _, r := range []domain.Resource{
		{ID: "db-1", Name: "orders-db", Type: domain.ResourceDatabase, Zones: []string{"az-a", "az-b", "az-c"}},
		{ID: "svc-a", Name: "orders-api", Type: domain.ResourceService, Redundant: true},
		{ID: "svc-b", Name: "billing", Type: domain.ResourceService},
		{ID: "svc-front", Name: "storefront", Type: domain.ResourceService},
	} {
		require.NoError(t, g.UpsertResource(ctx, r))
	}
	require.NoError(t, g.UpsertEdges(ctx, []domain.DependencyEdge{
		{Source: "svc-a", Target: "db-1", Category: domain.CategoryData, Strength: 0.9, Confidence: 0.9},
		{Source: "svc-b", Target: "db-1", Category: domain.CategoryData, Strength: 0.8, Confidence: 0.85},
		{Source: "svc-front", Target: "svc-a", Category: domain.CategoryNetwork, Strength: 0.5, Confidence: 0.8},
	}))
	return g
}

func TestBlastRadiusDistancesAndProbabilities(t *testing.T) {
	s := NewSimulator(simGraph(t), DefaultConfig())

	affected, err := s.BlastRadius(context.Background(), "db-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, affected, 3)

	byID := make(map[string]domain.AffectedResource)
	for _, a := range affected {
		byID[a.ResourceID] = a
	}

	// svc-a is redundant: 0.9 strength damped by 0.4
	assert.Equal(t, 1, byID["svc-a"].Distance)
	assert.InDelta(t, 0.36, byID["svc-a"].CascadeProbability, 0.001)

	// svc-b has no failover
	assert.Equal(t, 1, byID["svc-b"].Distance)
	assert.InDelta(t, 0.8, byID["svc-b"].CascadeProbability, 0.001)

	// svc-front accumulates along the path through svc-a
	assert.Equal(t, 2, byID["svc-front"].Distance)
	assert.InDelta(t, 0.18, byID["svc-front"].CascadeProbability, 0.001)
}

func TestBlastRadiusDepthBound(t *testing.T) {
	s := NewSimulator(simGraph(t), DefaultConfig())

	affected, err := s.BlastRadius(context.Background(), "db-1", 1, 0)
	require.NoError(t, err)
	require.Len(t, affected, 2)
	for _, a := range affected {
		assert.Equal(t, 1, a.Distance)
	}
}

func TestBlastRadiusResultBound(t *testing.T) {
	s := NewSimulator(simGraph(t), DefaultConfig())

	affected, err := s.BlastRadius(context.Background(), "db-1", 0, 1)
	require.NoError(t, err)
	assert.Len(t, affected, 1)
}

func TestBlastRadiusInvalidParameters(t *testing.T) {
	s := NewSimulator(simGraph(t), DefaultConfig())

	_, err := s.BlastRadius(context.Background(), "db-1", -1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	_, err = s.BlastRadius(context.Background(), "db-1", 0, -5)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestBlastRadiusUnknownResource(t *testing.T) {
	s := NewSimulator(simGraph(t), DefaultConfig())

	_, err := s.BlastRadius(context.Background(), "nope", 0, 0)
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestBlastRadiusCyclicGraphTerminates(t *testing.T) {
	g := store.NewMemoryStore()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, g.UpsertResource(ctx, domain.Resource{ID: id, Name: id, Type: domain.ResourceService}))
	}
	require.NoError(t, g.UpsertEdges(ctx, []domain.DependencyEdge{
		{Source: "b", Target: "a", Strength: 0.9},
		{Source: "c", Target: "b", Strength: 0.9},
		{Source: "a", Target: "c", Strength: 0.9},
	}))

	affected, err := NewSimulator(g, DefaultConfig()).BlastRadius(ctx, "a", 0, 0)
	require.NoError(t, err)
	assert.Len(t, affected, 2)
}

func TestCascadeProbabilityCoFailureCorroboration(t *testing.T) {
	s := NewSimulator(nil, DefaultConfig())

	// strength alone
	p := s.cascadeProbability(domain.DependencyEdge{Strength: 0.6}, false)
	assert.InDelta(t, 0.6, p, 1e-9)

	// historical co-failure corroborates
	p = s.cascadeProbability(domain.DependencyEdge{Strength: 0.6, CoFailure: 0.5}, false)
	assert.InDelta(t, 0.8, p, 1e-9)

	// redundancy damps even a corroborated edge
	p = s.cascadeProbability(domain.DependencyEdge{Strength: 0.6, CoFailure: 0.5}, true)
	assert.InDelta(t, 0.32, p, 1e-9)
}

func TestSimulateDegradedDatabaseUnderLoad(t *testing.T) {
	s := NewSimulator(simGraph(t), DefaultConfig())

	sc, err := s.Simulate(context.Background(), "db-1", domain.ScenarioDegradedPerformance, Params{CurrentLoad: 0.8})
	require.NoError(t, err)
	require.NotEmpty(t, sc.Outcomes)

	var degraded *domain.Outcome
	for i := range sc.Outcomes {
		if sc.Outcomes[i].Kind == domain.OutcomeDegraded {
			degraded = &sc.Outcomes[i]
		}
	}
	require.NotNil(t, degraded)
	assert.Greater(t, degraded.Probability, 0.0)
	assert.LessOrEqual(t, degraded.Probability, 1.0)
	assert.Greater(t, degraded.AffectedPercentage, 0.0)

	// downstream resources carry their own outcome lists
	require.NotEmpty(t, sc.Affected)
	for _, a := range sc.Affected {
		assert.NotEmpty(t, a.Outcomes)
	}
}

func TestSimulateLoadMonotonicity(t *testing.T) {
	s := NewSimulator(simGraph(t), DefaultConfig())
	ctx := context.Background()

	low, err := s.Simulate(ctx, "db-1", domain.ScenarioDegradedPerformance, Params{CurrentLoad: 0.2})
	require.NoError(t, err)
	high, err := s.Simulate(ctx, "db-1", domain.ScenarioDegradedPerformance, Params{CurrentLoad: 0.9})
	require.NoError(t, err)

	require.Equal(t, len(low.Outcomes), len(high.Outcomes))
	for i := range low.Outcomes {
		assert.GreaterOrEqual(t, high.Outcomes[i].Probability, low.Outcomes[i].Probability)
		assert.GreaterOrEqual(t, high.Outcomes[i].AffectedPercentage, low.Outcomes[i].AffectedPercentage)
		assert.GreaterOrEqual(t, high.Outcomes[i].ExpectedDurationSeconds, low.Outcomes[i].ExpectedDurationSeconds)
	}
}

func TestSimulatePartialOutageZoneMath(t *testing.T) {
	s := NewSimulator(simGraph(t), DefaultConfig())

	sc, err := s.Simulate(context.Background(), "db-1", domain.ScenarioPartialOutage,
		Params{FailedZones: []string{"az-a", "az-b"}})
	require.NoError(t, err)

	var outage *domain.Outcome
	for i := range sc.Outcomes {
		if sc.Outcomes[i].Kind == domain.OutcomePartialOutage {
			outage = &sc.Outcomes[i]
		}
	}
	require.NotNil(t, outage)
	assert.InDelta(t, 66.67, outage.AffectedPercentage, 0.01)
}

func TestSimulatePartialOutageValidation(t *testing.T) {
	s := NewSimulator(simGraph(t), DefaultConfig())
	ctx := context.Background()

	// no failed zones supplied
	_, err := s.Simulate(ctx, "db-1", domain.ScenarioPartialOutage, Params{})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	// zones the resource does not occupy
	_, err = s.Simulate(ctx, "db-1", domain.ScenarioPartialOutage, Params{FailedZones: []string{"az-z"}})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	// resource without zone data
	_, err = s.Simulate(ctx, "svc-a", domain.ScenarioPartialOutage, Params{FailedZones: []string{"az-a"}})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestSimulateUnknownScenario(t *testing.T) {
	s := NewSimulator(simGraph(t), DefaultConfig())

	_, err := s.Simulate(context.Background(), "db-1", domain.ScenarioKind("solar_flare"), Params{})
	assert.ErrorIs(t, err, domain.ErrUnknownScenario)
}

func TestSimulateInvalidLoad(t *testing.T) {
	s := NewSimulator(simGraph(t), DefaultConfig())

	for _, load := range []float64{-0.1, 1.5} {
		_, err := s.Simulate(context.Background(), "db-1", domain.ScenarioDegradedPerformance, Params{CurrentLoad: load})
		assert.ErrorIs(t, err, domain.ErrInvalidParameter, "load %v", load)
	}
}

func TestSimulateDeterminism(t *testing.T) {
	s := NewSimulator(simGraph(t), DefaultConfig())
	ctx := context.Background()

	first, err := s.Simulate(ctx, "db-1", domain.ScenarioIntermittentFailure, Params{CurrentLoad: 0.6})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := s.Simulate(ctx, "db-1", domain.ScenarioIntermittentFailure, Params{CurrentLoad: 0.6})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSimulateCancellation(t *testing.T) {
	s := NewSimulator(simGraph(t), DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.BlastRadius(ctx, "db-1", 0, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
