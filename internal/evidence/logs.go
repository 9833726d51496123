package evidence

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskradar/backend-go/internal/domain"
)

var (
	// outbound HTTP call lines: "GET https://billing:8443/v1/charge ..."
	logURLRe = regexp.MustCompile(`https?://([A-Za-z0-9._-]+(?::\d+)?)`)

	// "connecting to database orders" / "connected to db orders-db"
	logDBRe = regexp.MustCompile(`(?i)connect(?:ing|ed)?\s+to\s+(?:database|db)\s+([A-Za-z0-9._-]+)`)

	wordSplitRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// ExtractFromLogs scans log entries within the lookback window for
// dependency hints. URL and database-connection lines carry higher base
// confidence than bare service-name mentions. Per target, the strongest
// observation wins; fusion across methods happens later.
func ExtractFromLogs(sourceID string, entries []LogEntry, lookback time.Duration, now time.Time, idx resourceIndex, cfg Config) []Candidate {
	cutoff := now.Add(-lookback)
	best := make(map[string]Candidate)

	record := func(targetID string, confidence, strength float64, category domain.EdgeCategory, detail string) {
		if targetID == sourceID {
			return
		}
		if prev, ok := best[targetID]; ok && prev.Confidence >= confidence {
			return
		}
		best[targetID] = Candidate{
			Source:     sourceID,
			Target:     targetID,
			Method:     domain.MethodLogPattern,
			Category:   category,
			Confidence: confidence,
			Strength:   strength,
			Detail:     detail,
		}
	}

	for _, entry := range entries {
		if entry.Timestamp.Before(cutoff) {
			continue
		}

		for _, m := range logURLRe.FindAllStringSubmatch(entry.Message, -1) {
			if targetID, ok := idx.resolve(m[1]); ok {
				record(targetID, cfg.LogURLConfidence, 0.7, domain.CategoryNetwork,
					fmt.Sprintf("http call to %s", m[1]))
			}
		}

		for _, m := range logDBRe.FindAllStringSubmatch(entry.Message, -1) {
			if targetID, ok := idx.resolve(m[1]); ok {
				record(targetID, cfg.LogDBConfidence, 0.8, domain.CategoryData,
					fmt.Sprintf("database connection to %s", m[1]))
			}
		}

		// bare mentions of known service names are the weakest log signal
		for _, word := range wordSplitRe.Split(strings.ToLower(entry.Message), -1) {
			if len(word) < 3 {
				continue
			}
			if targetID, ok := idx[word]; ok {
				record(targetID, cfg.LogServiceConfidence, 0.5, domain.CategoryNetwork,
					fmt.Sprintf("service name mention %q", word))
			}
		}
	}

	return sortedCandidates(best)
}
