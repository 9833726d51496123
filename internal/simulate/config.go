package simulate

import "github.com/riskradar/backend-go/internal/domain"

// OutcomeTemplate is one unscaled entry of a failure-mode table. Simulate
// scales probability, affected percentage, and duration by the scenario
// parameters before emitting it.
type OutcomeTemplate struct {
	Kind            domain.OutcomeKind
	Probability     float64
	AffectedPct     float64
	DurationSeconds int
	Impact          string
	Technical       string
}

// Config holds the traversal caps and the per-type failure-mode tables.
type Config struct {
	MaxDepth   int
	MaxResults int

	// RedundancyDamping scales cascade probability into a redundant
	// dependent (it can fail over).
	RedundancyDamping float64

	// DefaultLoad substitutes for an unspecified current_load.
	DefaultLoad float64

	// Outcomes maps scenario kind -> resource type -> templates. The empty
	// resource type is the fallback row.
	Outcomes map[domain.ScenarioKind]map[domain.ResourceType][]OutcomeTemplate
}

// DefaultConfig returns the stock failure-mode tables.
func DefaultConfig() Config {
	return Config{
		MaxDepth:          5,
		MaxResults:        1000,
		RedundancyDamping: 0.4,
		DefaultLoad:       0.5,
		Outcomes: map[domain.ScenarioKind]map[domain.ResourceType][]OutcomeTemplate{
			domain.ScenarioDegradedPerformance: {
				domain.ResourceDatabase: {
					{domain.OutcomeDegraded, 0.90, 60, 600,
						"Queries slow down across every dependent service",
						"buffer cache churn and lock contention raise query latency"},
					{domain.OutcomeTimeout, 0.50, 25, 300,
						"Some requests exceed client timeouts",
						"connection pool exhaustion under sustained load"},
				},
				domain.ResourceCache: {
					{domain.OutcomeDegraded, 0.80, 50, 300,
						"Responses slow down as the backing store absorbs misses",
						"miss-rate spike shifts read load to the origin"},
					{domain.OutcomeErrorRateIncrease, 0.30, 15, 120,
						"Sporadic errors for cache-dependent paths",
						"origin saturates before autoscaling reacts"},
				},
				domain.ResourceLoadBalancer: {
					{domain.OutcomeDegraded, 0.85, 70, 300,
						"Reduced capacity behind the balancer",
						"unhealthy backends drop out of rotation"},
					{domain.OutcomeErrorRateIncrease, 0.40, 20, 180,
						"Intermittent 5xx while rotation shrinks",
						"health checks lag the actual backend state"},
				},
				"": {
					{domain.OutcomeDegraded, 0.70, 40, 300,
						"Elevated latency for dependent callers",
						"request queue builds up ahead of saturation"},
					{domain.OutcomeTimeout, 0.30, 15, 120,
						"Tail-latency requests start timing out",
						"worker pool exhaustion on slow paths"},
				},
			},
			domain.ScenarioIntermittentFailure: {
				domain.ResourceDatabase: {
					{domain.OutcomeBlip, 0.80, 30, 30,
						"Short bursts of failed queries",
						"transient connection resets during failover probes"},
					{domain.OutcomeTimeout, 0.60, 20, 60,
						"Sporadic query timeouts",
						"retry storms amplify transient stalls"},
					{domain.OutcomeErrorRateIncrease, 0.50, 25, 120,
						"Raised error rate on write paths",
						"replication lag surfaces as stale-read errors"},
				},
				"": {
					{domain.OutcomeBlip, 0.70, 25, 30,
						"Brief request failures in bursts",
						"flapping upstream connection"},
					{domain.OutcomeErrorRateIncrease, 0.40, 15, 90,
						"Raised background error rate",
						"partial request loss between retries"},
				},
			},
			domain.ScenarioPartialOutage: {
				"": {
					{domain.OutcomePartialOutage, 0.95, 100, 900,
						"Requests served by the failed zones are lost",
						"zone-local capacity is unreachable"},
					{domain.OutcomeDegraded, 0.70, 60, 600,
						"Surviving zones run above normal capacity",
						"traffic from failed zones piles onto survivors"},
				},
			},
		},
	}
}

// templatesFor returns the failure-mode row for a (scenario, type) pair,
// falling back to the scenario's default row.
func (c Config) templatesFor(kind domain.ScenarioKind, t domain.ResourceType) []OutcomeTemplate {
	byType, ok := c.Outcomes[kind]
	if !ok {
		return nil
	}
	if tpls, ok := byType[t]; ok {
		return tpls
	}
	return byType[""]
}
