package evidence

import (
	"time"

	"github.com/riskradar/backend-go/internal/domain"
)

// Config holds the method confidence constants and extraction tunables.
// It is immutable after construction; multiple configurations may coexist.
type Config struct {
	// Base confidences per evidence method
	ConnStringConfidence    float64
	LogURLConfidence        float64
	LogDBConfidence         float64
	LogServiceConfidence    float64
	MetricTrafficConfidence float64
	MetricHealthConfidence  float64
	ResourceGroupConfidence float64

	// Minimum Pearson correlation for a metric-correlation candidate
	CorrelationThreshold float64

	// Lookback bounds how far back log and metric evidence is considered
	Lookback time.Duration

	// MaxFusedConfidence caps the fused confidence below certainty
	MaxFusedConfidence float64
}

// DefaultConfig returns the standard evidence configuration
func DefaultConfig() Config {
	return Config{
		ConnStringConfidence:    0.90,
		LogURLConfidence:        0.80,
		LogDBConfidence:         0.85,
		LogServiceConfidence:    0.60,
		MetricTrafficConfidence: 0.80,
		MetricHealthConfidence:  0.85,
		ResourceGroupConfidence: 0.30,
		CorrelationThreshold:    0.70,
		Lookback:                24 * time.Hour,
		MaxFusedConfidence:      0.99,
	}
}

// Candidate is a single pre-fusion dependency observation
type Candidate struct {
	Source     string
	Target     string
	Method     domain.DiscoveryMethod
	Category   domain.EdgeCategory
	Confidence float64
	Strength   float64
	Detail     string
}
