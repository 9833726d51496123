package domain

// DiscoveryMethod identifies how a dependency edge was observed
type DiscoveryMethod string

const (
	MethodConnectionString  DiscoveryMethod = "connection_string"
	MethodLogPattern        DiscoveryMethod = "log_pattern"
	MethodMetricCorrelation DiscoveryMethod = "metric_correlation"
	MethodResourceGroup     DiscoveryMethod = "resource_group"
)

// EdgeCategory classifies what kind of dependency an edge represents
type EdgeCategory string

const (
	CategoryData          EdgeCategory = "data"
	CategoryNetwork       EdgeCategory = "network"
	CategoryConfiguration EdgeCategory = "configuration"
	CategoryCompute       EdgeCategory = "compute"
)

// DependencyEdge is a directed source -> target edge meaning source depends
// on target. Before fusion at most one edge exists per (source, target,
// method); after fusion at most one per (source, target), with Methods
// listing every contributing discovery method and Method the strongest one.
type DependencyEdge struct {
	Source     string            `json:"source"`
	Target     string            `json:"target"`
	Category   EdgeCategory      `json:"category"`
	Strength   float64           `json:"strength"`
	Method     DiscoveryMethod   `json:"method"`
	Methods    []DiscoveryMethod `json:"methods,omitempty"`
	Confidence float64           `json:"confidence"`
	CoFailure  float64           `json:"cofailure,omitempty"`
}
