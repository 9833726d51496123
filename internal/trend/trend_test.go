package trend

import (
	"testing"
	"time"

	"github.com/riskradar/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshots(scores ...float64) []domain.RiskSnapshot {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.RiskSnapshot, len(scores))
	for i, s := range scores {
		out[i] = domain.RiskSnapshot{
			Timestamp: base.AddDate(0, 0, i),
			Score:     s,
			Level:     domain.LevelForScore(s),
		}
	}
	return out
}

func TestAnalyzeInsufficientData(t *testing.T) {
	for _, series := range [][]domain.RiskSnapshot{nil, snapshots(42)} {
		r := Analyze("db-1", series, DefaultConfig())
		assert.Equal(t, StatusInsufficientData, r.Status)
		assert.Empty(t, r.Anomalies)
		assert.Nil(t, r.Prediction)
	}
}

func TestAnalyzeTwoSnapshotsDirectionOnly(t *testing.T) {
	r := Analyze("db-1", snapshots(40, 50), DefaultConfig())

	assert.Equal(t, StatusPartial, r.Status)
	assert.Equal(t, DirectionDegrading, r.Direction)
	assert.InDelta(t, 25.0, r.ChangePct, 0.01)
	assert.Equal(t, SeveritySignificant, r.Severity)
	assert.Empty(t, r.Anomalies)
	assert.Nil(t, r.Prediction)
}

func TestAnalyzeConstantSeriesIsStable(t *testing.T) {
	r := Analyze("db-1", snapshots(55, 55, 55, 55, 55, 55), DefaultConfig())

	assert.Equal(t, StatusOK, r.Status)
	assert.Equal(t, DirectionStable, r.Direction)
	assert.Zero(t, r.ChangePct)
	assert.Empty(t, r.Anomalies)
	require.NotNil(t, r.Prediction)
	assert.Zero(t, r.Prediction.Slope)
	assert.Equal(t, 55.0, r.Prediction.ProjectedScore)
}

func TestAnalyzeDirections(t *testing.T) {
	cfg := DefaultConfig()

	r := Analyze("db-1", snapshots(40, 42, 44, 46, 52), cfg)
	assert.Equal(t, DirectionDegrading, r.Direction)

	r = Analyze("db-1", snapshots(52, 50, 48, 46, 40), cfg)
	assert.Equal(t, DirectionImproving, r.Direction)

	r = Analyze("db-1", snapshots(50, 50.5, 50.2, 50.8, 51), cfg)
	assert.Equal(t, DirectionStable, r.Direction)
}

func TestAnalyzeVolatileSeries(t *testing.T) {
	// swings far beyond the volatility threshold in the recent window
	r := Analyze("db-1", snapshots(50, 80, 20, 90, 15, 85), DefaultConfig())
	assert.Equal(t, DirectionVolatile, r.Direction)
}

func TestAnalyzeSeverityBands(t *testing.T) {
	tests := []struct {
		prior, latest float64
		severity      Severity
	}{
		{100, 102, SeverityMinor},       // 2%
		{100, 110, SeverityModerate},    // 10%
		{100, 120, SeveritySignificant}, // 20%
		{100, 140, SeverityCritical},    // 40%
	}

	for _, tt := range tests {
		r := Analyze("db-1", snapshots(tt.prior, tt.prior, tt.latest), DefaultConfig())
		assert.Equal(t, tt.severity, r.Severity, "%v -> %v", tt.prior, tt.latest)
	}
}

func TestAnalyzeAnomalyThresholds(t *testing.T) {
	// one large spike in an otherwise tight series
	series := snapshots(50, 51, 49, 50, 51, 50, 49, 50, 51, 90)
	r := Analyze("db-1", series, DefaultConfig())

	require.NotEmpty(t, r.Anomalies)
	spike := r.Anomalies[len(r.Anomalies)-1]
	assert.Equal(t, 90.0, spike.Score)
	if spike.ZScore >= 3 {
		assert.Equal(t, "high", spike.Severity)
	} else {
		assert.Equal(t, "medium", spike.Severity)
	}
	for _, a := range r.Anomalies {
		assert.GreaterOrEqual(t, a.ZScore, 2.0)
	}
}

func TestAnalyzePredictionConfidence(t *testing.T) {
	cfg := DefaultConfig()

	r := Analyze("db-1", snapshots(40, 42, 44), cfg)
	require.NotNil(t, r.Prediction)
	assert.Equal(t, "low", r.Prediction.Confidence)

	r = Analyze("db-1", snapshots(40, 42, 44, 46, 48, 50, 52), cfg)
	require.NotNil(t, r.Prediction)
	assert.Equal(t, "medium", r.Prediction.Confidence)

	r = Analyze("db-1", snapshots(40, 41, 42, 43, 44, 45, 46, 47, 48, 49, 50), cfg)
	require.NotNil(t, r.Prediction)
	assert.Equal(t, "high", r.Prediction.Confidence)
}

func TestAnalyzePredictionSlope(t *testing.T) {
	// perfectly linear: +2/day from 40
	r := Analyze("db-1", snapshots(40, 42, 44, 46, 48), DefaultConfig())

	require.NotNil(t, r.Prediction)
	assert.InDelta(t, 2.0, r.Prediction.Slope, 1e-9)
	// last value 48 projected 7 days forward
	assert.InDelta(t, 62.0, r.Prediction.ProjectedScore, 1e-9)
	assert.Contains(t, r.Prediction.Interpretation, "rising")
}

func TestAnalyzePredictionClampedToScale(t *testing.T) {
	r := Analyze("db-1", snapshots(70, 80, 90, 95, 99), DefaultConfig())
	require.NotNil(t, r.Prediction)
	assert.LessOrEqual(t, r.Prediction.ProjectedScore, 100.0)
}

func TestAnalyzeSortsByTimestamp(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	series := []domain.RiskSnapshot{
		{Timestamp: base.AddDate(0, 0, 2), Score: 60},
		{Timestamp: base, Score: 40},
		{Timestamp: base.AddDate(0, 0, 1), Score: 50},
	}

	r := Analyze("db-1", series, DefaultConfig())
	// latest (60) vs prior (50)
	assert.InDelta(t, 20.0, r.ChangePct, 0.01)
	assert.Equal(t, DirectionDegrading, r.Direction)
}
