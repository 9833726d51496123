package evidence

import (
	"sort"

	"github.com/riskradar/backend-go/internal/domain"
)

// Fuse combines candidates into at most one edge per (source, target).
// Independent methods corroborate through a noisy-OR, so the fused
// confidence is never below the strongest single contributor, and two
// observations at 0.8 fuse to 0.96. Resource-group co-membership is a
// fallback only: it is dropped for any pair that has real evidence.
func Fuse(candidates []Candidate, cfg Config) []domain.DependencyEdge {
	type pairKey struct{ source, target string }

	byPair := make(map[pairKey]map[domain.DiscoveryMethod]Candidate)
	for _, c := range candidates {
		key := pairKey{c.Source, c.Target}
		methods := byPair[key]
		if methods == nil {
			methods = make(map[domain.DiscoveryMethod]Candidate)
			byPair[key] = methods
		}
		// at most one observation per method: keep the strongest
		if prev, ok := methods[c.Method]; !ok || c.Confidence > prev.Confidence {
			methods[c.Method] = c
		}
	}

	edges := make([]domain.DependencyEdge, 0, len(byPair))
	for key, methods := range byPair {
		if len(methods) > 1 {
			delete(methods, domain.MethodResourceGroup)
		}

		contributors := make([]Candidate, 0, len(methods))
		for _, c := range methods {
			contributors = append(contributors, c)
		}
		sort.Slice(contributors, func(i, j int) bool {
			if contributors[i].Confidence != contributors[j].Confidence {
				return contributors[i].Confidence > contributors[j].Confidence
			}
			return contributors[i].Method < contributors[j].Method
		})

		miss := 1.0
		strength := 0.0
		methodList := make([]domain.DiscoveryMethod, 0, len(contributors))
		for _, c := range contributors {
			miss *= 1 - c.Confidence
			if c.Strength > strength {
				strength = c.Strength
			}
			methodList = append(methodList, c.Method)
		}

		confidence := 1 - miss
		if len(contributors) > 1 && confidence > cfg.MaxFusedConfidence {
			confidence = cfg.MaxFusedConfidence
		}

		top := contributors[0]
		edges = append(edges, domain.DependencyEdge{
			Source:     key.source,
			Target:     key.target,
			Category:   top.Category,
			Strength:   strength,
			Method:     top.Method,
			Methods:    methodList,
			Confidence: confidence,
		})
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}
