package domain

// ScenarioKind identifies a failure simulation scenario
type ScenarioKind string

const (
	ScenarioDegradedPerformance ScenarioKind = "degraded_performance"
	ScenarioIntermittentFailure ScenarioKind = "intermittent_failure"
	ScenarioPartialOutage       ScenarioKind = "partial_outage"
)

// OutcomeKind identifies a predicted failure effect
type OutcomeKind string

const (
	OutcomeDowntime          OutcomeKind = "downtime"
	OutcomeDegraded          OutcomeKind = "degraded"
	OutcomeBlip              OutcomeKind = "blip"
	OutcomeTimeout           OutcomeKind = "timeout"
	OutcomeErrorRateIncrease OutcomeKind = "error_rate_increase"
	OutcomePartialOutage     OutcomeKind = "partial_outage"
)

// Outcome is one weighted predicted effect. Outcomes are independent
// possible effects, not a partition: probabilities need not sum to 1.
type Outcome struct {
	Kind                    OutcomeKind `json:"outcome_kind"`
	Probability             float64     `json:"probability"`
	AffectedPercentage      float64     `json:"affected_percentage"`
	ExpectedDurationSeconds int         `json:"expected_duration_seconds"`
	Impact                  string      `json:"impact"`
	Technical               string      `json:"technical"`
}

// AffectedResource is one resource reached by a blast-radius traversal
type AffectedResource struct {
	ResourceID         string    `json:"resource_id"`
	Distance           int       `json:"distance"`
	CascadeProbability float64   `json:"cascade_probability"`
	Outcomes           []Outcome `json:"outcomes,omitempty"`
}

// FailureScenario is the simulator output for one (resource, scenario) query
type FailureScenario struct {
	ResourceID string             `json:"resource_id"`
	Kind       ScenarioKind       `json:"scenario_kind"`
	Outcomes   []Outcome          `json:"outcomes"`
	Affected   []AffectedResource `json:"affected"`
}
