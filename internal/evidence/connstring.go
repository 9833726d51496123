package evidence

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/riskradar/backend-go/internal/domain"
)

// key=value grammars: Server=...;Database=..., Host=..., Data Source=...
var hostKeyRe = regexp.MustCompile(`(?i)(?:server|host|data source|addr(?:ess)?)\s*=\s*([^;,\s]+)`)

// schemes whose targets are network peers rather than data stores
var networkSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"grpc":  true,
	"tcp":   true,
}

// ExtractFromConnectionString parses one connection string and emits one
// candidate per recognized target host. Connection strings are structurally
// unambiguous, so candidates carry the fixed high base confidence.
// Unparseable input returns domain.ErrMalformedEvidence.
func ExtractFromConnectionString(sourceID, text string, idx resourceIndex, cfg Config) ([]Candidate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty connection string", domain.ErrMalformedEvidence)
	}

	var hosts []string
	category := domain.CategoryData

	if strings.Contains(text, "://") {
		u, err := url.Parse(text)
		if err != nil || u.Hostname() == "" {
			return nil, fmt.Errorf("%w: %q", domain.ErrMalformedEvidence, text)
		}
		hosts = append(hosts, u.Hostname())
		if networkSchemes[strings.ToLower(u.Scheme)] {
			category = domain.CategoryNetwork
		}
	} else {
		matches := hostKeyRe.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: no host in %q", domain.ErrMalformedEvidence, text)
		}
		for _, m := range matches {
			hosts = append(hosts, m[1])
		}
	}

	var out []Candidate
	seen := make(map[string]bool)
	for _, h := range hosts {
		targetID, ok := idx.resolve(h)
		if !ok || targetID == sourceID || seen[targetID] {
			continue
		}
		seen[targetID] = true
		out = append(out, Candidate{
			Source:     sourceID,
			Target:     targetID,
			Method:     domain.MethodConnectionString,
			Category:   category,
			Confidence: cfg.ConnStringConfidence,
			Strength:   0.9,
			Detail:     fmt.Sprintf("connection string host %s", h),
		})
	}
	return out, nil
}
