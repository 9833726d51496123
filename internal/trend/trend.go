package trend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/riskradar/backend-go/internal/domain"
)

// Direction of a risk-score trend
type Direction string

const (
	DirectionImproving Direction = "improving"
	DirectionDegrading Direction = "degrading"
	DirectionStable    Direction = "stable"
	DirectionVolatile  Direction = "volatile"
)

// Severity bands the magnitude of the latest change
type Severity string

const (
	SeverityMinor       Severity = "minor"
	SeverityModerate    Severity = "moderate"
	SeveritySignificant Severity = "significant"
	SeverityCritical    Severity = "critical"
)

// Status tells a caller how much of the report could be computed
type Status string

const (
	StatusOK Status = "ok"
	// StatusPartial: direction and severity only (exactly two snapshots)
	StatusPartial Status = "partial"
	// StatusInsufficientData: fewer than two snapshots, nothing computed
	StatusInsufficientData Status = "insufficient_data"
)

// Anomaly is one snapshot whose z-score crosses a threshold
type Anomaly struct {
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`
	ZScore    float64   `json:"z_score"`
	Severity  string    `json:"severity"`
}

// Prediction is an OLS projection of the score N days out
type Prediction struct {
	Slope          float64 `json:"slope"`
	ProjectedScore float64 `json:"projected_score"`
	HorizonDays    int     `json:"horizon_days"`
	Confidence     string  `json:"confidence"`
	Interpretation string  `json:"interpretation"`
}

// Report is the full trend analysis for one resource
type Report struct {
	ResourceID string      `json:"resource_id"`
	Status     Status      `json:"status"`
	Direction  Direction   `json:"direction,omitempty"`
	Severity   Severity    `json:"severity,omitempty"`
	ChangePct  float64     `json:"change_pct"`
	Anomalies  []Anomaly   `json:"anomalies"`
	Prediction *Prediction `json:"prediction,omitempty"`
}

// Config holds the analyzer thresholds.
type Config struct {
	// VolatilityThreshold is the recent-window stddev above which the
	// direction is reported volatile regardless of sign.
	VolatilityThreshold float64
	VolatilityWindow    int

	ZMedium float64
	ZHigh   float64

	PredictionHorizonDays int
}

func DefaultConfig() Config {
	return Config{
		VolatilityThreshold:   10.0,
		VolatilityWindow:      5,
		ZMedium:               2.0,
		ZHigh:                 3.0,
		PredictionHorizonDays: 7,
	}
}

// Analyze computes trend direction, anomalies, and an OLS projection from a
// caller-supplied snapshot series. It never guesses: with fewer than two
// snapshots the report only carries the insufficient-data status, and a
// zero-variance series yields stable/no-anomalies/slope zero.
func Analyze(resourceID string, snapshots []domain.RiskSnapshot, cfg Config) Report {
	report := Report{ResourceID: resourceID, Anomalies: []Anomaly{}}

	if len(snapshots) < 2 {
		report.Status = StatusInsufficientData
		return report
	}

	ordered := make([]domain.RiskSnapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	scores := make([]float64, len(ordered))
	for i, s := range ordered {
		scores[i] = s.Score
	}

	report.ChangePct = round2(changePct(scores))
	report.Severity = severityFor(math.Abs(report.ChangePct))
	report.Direction = directionFor(report.ChangePct, scores, cfg)

	if len(ordered) < 3 {
		report.Status = StatusPartial
		return report
	}
	report.Status = StatusOK
	report.Anomalies = detectAnomalies(ordered, scores, cfg)
	report.Prediction = predict(scores, cfg)
	return report
}

// changePct compares the latest score to the prior one.
func changePct(scores []float64) float64 {
	latest := scores[len(scores)-1]
	prior := scores[len(scores)-2]
	if prior == 0 {
		if latest == 0 {
			return 0
		}
		return 100
	}
	return (latest - prior) / prior * 100
}

func severityFor(absChange float64) Severity {
	switch {
	case absChange > 30:
		return SeverityCritical
	case absChange >= 15:
		return SeveritySignificant
	case absChange >= 5:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}

func directionFor(change float64, scores []float64, cfg Config) Direction {
	window := scores
	if len(window) > cfg.VolatilityWindow {
		window = window[len(window)-cfg.VolatilityWindow:]
	}
	if _, std := meanStd(window); std > cfg.VolatilityThreshold {
		return DirectionVolatile
	}

	switch {
	case change >= 5:
		return DirectionDegrading
	case change <= -5:
		return DirectionImproving
	default:
		return DirectionStable
	}
}

// detectAnomalies flags snapshots whose z-score against the series mean
// crosses the configured thresholds. Zero variance yields none.
func detectAnomalies(snapshots []domain.RiskSnapshot, scores []float64, cfg Config) []Anomaly {
	mean, std := meanStd(scores)
	if std == 0 {
		return []Anomaly{}
	}

	anomalies := []Anomaly{}
	for i, s := range snapshots {
		z := (scores[i] - mean) / std
		abs := math.Abs(z)
		if abs < cfg.ZMedium {
			continue
		}
		severity := "medium"
		if abs >= cfg.ZHigh {
			severity = "high"
		}
		anomalies = append(anomalies, Anomaly{
			Timestamp: s.Timestamp,
			Score:     s.Score,
			ZScore:    round2(z),
			Severity:  severity,
		})
	}
	return anomalies
}

// predict fits score against sample index with ordinary least squares and
// projects the horizon forward, one index step per day.
func predict(scores []float64, cfg Config) *Prediction {
	n := float64(len(scores))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range scores {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	var slope float64
	if denom != 0 {
		slope = (n*sumXY - sumX*sumY) / denom
	}
	intercept := (sumY - slope*sumX) / n

	horizon := cfg.PredictionHorizonDays
	projected := intercept + slope*(n-1+float64(horizon))

	confidence := "high"
	switch {
	case len(scores) < 5:
		confidence = "low"
	case len(scores) < 10:
		confidence = "medium"
	}

	var interpretation string
	switch {
	case slope > 0.5:
		interpretation = fmt.Sprintf("risk rising about %.1f points/day", slope)
	case slope < -0.5:
		interpretation = fmt.Sprintf("risk falling about %.1f points/day", -slope)
	default:
		interpretation = "risk roughly flat"
	}

	return &Prediction{
		Slope:          round2(slope),
		ProjectedScore: round2(clamp(projected, 0, 100)),
		HorizonDays:    horizon,
		Confidence:     confidence,
		Interpretation: interpretation,
	}
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
