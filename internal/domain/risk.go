package domain

import "time"

// RiskLevel is the qualitative band derived from a 0-100 score
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// LevelForScore maps a 0-100 score to its risk band
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= 75:
		return RiskCritical
	case score >= 50:
		return RiskHigh
	case score >= 25:
		return RiskMedium
	default:
		return RiskLow
	}
}

// RiskAssessment is the on-demand scoring result for one resource.
// Immutable once returned; never persisted by this engine.
type RiskAssessment struct {
	ResourceID string    `json:"resource_id"`
	Score      float64   `json:"score"`
	Level      RiskLevel `json:"level"`
	IsSPOF     bool      `json:"is_spof"`
	Dependents int       `json:"dependents"`
	Factors    []string  `json:"factors"`
}

// RiskSnapshot is a caller-supplied historical (score, level, factors)
// observation consumed by the trend analyzer
type RiskSnapshot struct {
	Timestamp time.Time          `json:"timestamp"`
	Score     float64            `json:"score"`
	Level     RiskLevel          `json:"level"`
	Factors   map[string]float64 `json:"factors,omitempty"`
}
