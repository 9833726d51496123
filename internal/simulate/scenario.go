package simulate

import (
	"context"
	"fmt"
	"math"

	"github.com/riskradar/backend-go/internal/domain"
)

// Params are the caller-supplied scenario inputs. Zero values pick
// defaults; out-of-range values are rejected with ErrInvalidParameter.
type Params struct {
	// CurrentLoad in [0,1] drives degraded-performance and intermittent
	// scenarios. Zero means unspecified and uses the configured default.
	CurrentLoad float64 `json:"current_load,omitempty"`

	// FailedZones names the zones taken out in a partial outage. Only
	// zones the resource actually occupies count.
	FailedZones []string `json:"failed_zones,omitempty"`

	MaxDepth   int `json:"max_depth,omitempty"`
	MaxResults int `json:"max_results,omitempty"`
}

// Simulate synthesizes a failure scenario for one resource. Output is
// fully determined by the graph snapshot, the resource, and the
// parameters; there is no stochastic element.
func (s *Simulator) Simulate(ctx context.Context, resourceID string, kind domain.ScenarioKind, p Params) (*domain.FailureScenario, error) {
	if _, ok := s.cfg.Outcomes[kind]; !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownScenario, kind)
	}
	if p.CurrentLoad < 0 || p.CurrentLoad > 1 {
		return nil, fmt.Errorf("%w: current_load %v outside [0,1]", domain.ErrInvalidParameter, p.CurrentLoad)
	}

	r, err := s.graph.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	var direct []domain.Outcome
	switch kind {
	case domain.ScenarioPartialOutage:
		ratio, err := zoneRatio(r, p.FailedZones)
		if err != nil {
			return nil, err
		}
		direct = s.outcomesForZones(kind, r.Type, ratio)
	default:
		load := p.CurrentLoad
		if load == 0 {
			load = s.cfg.DefaultLoad
		}
		direct = s.outcomesForLoad(kind, r.Type, load)
	}

	affected, err := s.blastRadius(ctx, resourceID, p.MaxDepth, p.MaxResults)
	if err != nil {
		return nil, err
	}

	scenario := &domain.FailureScenario{
		ResourceID: resourceID,
		Kind:       kind,
		Outcomes:   direct,
		Affected:   make([]domain.AffectedResource, len(affected)),
	}
	for i, n := range affected {
		n.Outcomes = s.outcomesForCascade(kind, n.resourceType, n.CascadeProbability)
		scenario.Affected[i] = n.AffectedResource
	}
	return scenario, nil
}

// zoneRatio computes the failed fraction of the resource's zones.
func zoneRatio(r *domain.Resource, failed []string) (float64, error) {
	if len(r.Zones) == 0 {
		return 0, fmt.Errorf("%w: resource %s has no zones", domain.ErrInvalidParameter, r.ID)
	}
	if len(failed) == 0 {
		return 0, fmt.Errorf("%w: failed_zones is required for partial outage", domain.ErrInvalidParameter)
	}
	known := make(map[string]bool, len(r.Zones))
	for _, z := range r.Zones {
		known[z] = true
	}
	matched := 0
	for _, z := range failed {
		if known[z] {
			matched++
			known[z] = false
		}
	}
	if matched == 0 {
		return 0, fmt.Errorf("%w: none of the failed zones belong to %s", domain.ErrInvalidParameter, r.ID)
	}
	return float64(matched) / float64(len(r.Zones)), nil
}

// outcomesForLoad scales the failure-mode row by the supplied load. Every
// scaled value grows monotonically with load.
func (s *Simulator) outcomesForLoad(kind domain.ScenarioKind, t domain.ResourceType, load float64) []domain.Outcome {
	tpls := s.cfg.templatesFor(kind, t)
	out := make([]domain.Outcome, 0, len(tpls))
	for _, tpl := range tpls {
		out = append(out, domain.Outcome{
			Kind:                    tpl.Kind,
			Probability:             round2(clamp01(tpl.Probability * (0.4 + 0.6*load))),
			AffectedPercentage:      round2(tpl.AffectedPct * (0.25 + 0.75*load)),
			ExpectedDurationSeconds: int(math.Round(float64(tpl.DurationSeconds) * (0.5 + load))),
			Impact:                  tpl.Impact,
			Technical:               tpl.Technical,
		})
	}
	return out
}

// outcomesForZones scales the partial-outage row by the failed-zone ratio.
// The partial-outage entry itself reports the ratio directly; the
// surviving-zone stress entries scale with it.
func (s *Simulator) outcomesForZones(kind domain.ScenarioKind, t domain.ResourceType, ratio float64) []domain.Outcome {
	tpls := s.cfg.templatesFor(kind, t)
	out := make([]domain.Outcome, 0, len(tpls))
	for _, tpl := range tpls {
		o := domain.Outcome{
			Kind:                    tpl.Kind,
			Probability:             round2(clamp01(tpl.Probability * (0.5 + 0.5*ratio))),
			AffectedPercentage:      round2(tpl.AffectedPct * ratio),
			ExpectedDurationSeconds: tpl.DurationSeconds,
			Impact:                  tpl.Impact,
			Technical:               tpl.Technical,
		}
		if tpl.Kind == domain.OutcomePartialOutage {
			o.AffectedPercentage = round2(ratio * 100)
		}
		out = append(out, o)
	}
	return out
}

// outcomesForCascade scales a downstream resource's row by its cascade
// probability.
func (s *Simulator) outcomesForCascade(kind domain.ScenarioKind, t domain.ResourceType, cascade float64) []domain.Outcome {
	tpls := s.cfg.templatesFor(kind, t)
	out := make([]domain.Outcome, 0, len(tpls))
	for _, tpl := range tpls {
		out = append(out, domain.Outcome{
			Kind:                    tpl.Kind,
			Probability:             round2(clamp01(tpl.Probability * cascade)),
			AffectedPercentage:      round2(tpl.AffectedPct * cascade),
			ExpectedDurationSeconds: tpl.DurationSeconds,
			Impact:                  tpl.Impact,
			Technical:               tpl.Technical,
		})
	}
	return out
}
