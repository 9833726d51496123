package evidence

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/riskradar/backend-go/internal/domain"
)

// ExtractFromMetrics correlates the source resource's series against series
// owned by other resources within the lookback window. A pair whose Pearson
// correlation clears the threshold becomes a metric-correlation candidate;
// health-series correlation is a slightly stronger signal than raw traffic.
func ExtractFromMetrics(sourceID string, series []MetricSeries, lookback time.Duration, now time.Time, cfg Config) []Candidate {
	cutoff := now.Add(-lookback)

	var own []MetricSeries
	peers := make(map[string][]MetricSeries)
	for _, s := range series {
		trimmed := trimSeries(s, cutoff)
		if len(trimmed.Points) == 0 {
			continue
		}
		if s.ResourceID == sourceID {
			own = append(own, trimmed)
		} else {
			peers[s.ResourceID] = append(peers[s.ResourceID], trimmed)
		}
	}

	best := make(map[string]Candidate)
	for _, src := range own {
		for peerID, peerSeries := range peers {
			for _, peer := range peerSeries {
				if seriesKind(src.Name) != seriesKind(peer.Name) {
					continue
				}
				corr, n := pearson(src.Points, peer.Points)
				if n < 3 || corr < cfg.CorrelationThreshold {
					continue
				}
				confidence := cfg.MetricTrafficConfidence
				if seriesKind(src.Name) == "health" {
					confidence = cfg.MetricHealthConfidence
				}
				if prev, ok := best[peerID]; ok && prev.Confidence >= confidence {
					continue
				}
				best[peerID] = Candidate{
					Source:     sourceID,
					Target:     peerID,
					Method:     domain.MethodMetricCorrelation,
					Category:   domain.CategoryNetwork,
					Confidence: confidence,
					Strength:   corr,
					Detail:     fmt.Sprintf("%s/%s correlation %.2f over %d samples", src.Name, peer.Name, corr, n),
				}
			}
		}
	}

	return sortedCandidates(best)
}

func trimSeries(s MetricSeries, cutoff time.Time) MetricSeries {
	out := MetricSeries{ResourceID: s.ResourceID, Name: s.Name}
	for _, p := range s.Points {
		if !p.Timestamp.Before(cutoff) {
			out.Points = append(out.Points, p)
		}
	}
	return out
}

func seriesKind(name string) string {
	n := strings.ToLower(name)
	if strings.Contains(n, "health") || strings.Contains(n, "error") {
		return "health"
	}
	return "traffic"
}

// pearson aligns two series on timestamps and returns the correlation
// coefficient and the overlap size. Zero-variance input yields 0.
func pearson(a, b []MetricPoint) (float64, int) {
	byTime := make(map[int64]float64, len(b))
	for _, p := range b {
		byTime[p.Timestamp.Unix()] = p.Value
	}

	var xs, ys []float64
	for _, p := range a {
		if v, ok := byTime[p.Timestamp.Unix()]; ok {
			xs = append(xs, p.Value)
			ys = append(ys, v)
		}
	}
	n := len(xs)
	if n < 2 {
		return 0, n
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/float64(n), sumY/float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, n
	}
	return cov / math.Sqrt(varX*varY), n
}

func sortedCandidates(m map[string]Candidate) []Candidate {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Candidate, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
