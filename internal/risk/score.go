package risk

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/riskradar/backend-go/internal/domain"
)

// Input is the topology context Score needs beyond the resource itself.
// Dependents is the distinct count of direct dependents; Now anchors the
// change-recency contribution.
type Input struct {
	Resource   domain.Resource
	Dependents int
	Now        time.Time
}

type factor struct {
	label  string
	weight float64
}

// Score computes a 0-100 risk assessment from a resource and its topology
// context. Pure and total: unknown types fall back to the default baseline
// and it never returns an error.
func Score(in Input, cfg Config) domain.RiskAssessment {
	r := in.Resource
	class := ClassFor(r.Type)

	base, ok := cfg.Criticality[r.Type]
	if !ok {
		base = cfg.DefaultBaseline
	}
	mult := cfg.ClassMultipliers[class]
	if mult == 0 {
		mult = 1.0
	}

	total := base * mult
	factors := []factor{
		{fmt.Sprintf("base criticality %.1f (%s, %s x%.2f)", base, r.Type, class, mult), total},
	}

	spof := in.Dependents >= 1 && !r.Redundant
	if spof {
		total += cfg.SPOFBonus
		factors = append(factors, factor{fmt.Sprintf("single point of failure +%.0f", cfg.SPOFBonus), cfg.SPOFBonus})
	}

	if class == domain.ClassInfrastructure && !r.Redundant {
		total += cfg.InfraNonRedundantBonus
		factors = append(factors, factor{fmt.Sprintf("non-redundant infrastructure +%.0f", cfg.InfraNonRedundantBonus), cfg.InfraNonRedundantBonus})
	}

	if tier := tierBonus(in.Dependents, cfg); tier > 0 {
		total += tier
		factors = append(factors, factor{fmt.Sprintf("%d dependents +%.0f", in.Dependents, tier), tier})
	}

	if c := math.Min(cfg.DependentWeight*float64(in.Dependents), cfg.DependentCap); c > 0 {
		total += c
		factors = append(factors, factor{fmt.Sprintf("dependent fan-out +%.1f", c), c})
	}

	if r.DeployFailureRate > 0 {
		c := math.Min(cfg.DeployFailWeight*r.DeployFailureRate*100, cfg.DeployFailCap)
		total += c
		factors = append(factors, factor{fmt.Sprintf("deployment failure rate %.0f%% +%.1f", r.DeployFailureRate*100, c), c})
	}

	if c := recencyContribution(r.LastChange, in.Now, cfg); c > 0 {
		total += c
		factors = append(factors, factor{fmt.Sprintf("recent change +%.1f", c), c})
	}

	if r.Redundant {
		total *= cfg.RedundantMultiplier
		factors = append(factors, factor{fmt.Sprintf("redundant x%.2f", cfg.RedundantMultiplier), 0})
	} else {
		total *= cfg.NonRedundantMultiplier
		factors = append(factors, factor{fmt.Sprintf("non-redundant x%.2f", cfg.NonRedundantMultiplier), 0})
	}

	score := math.Round(clamp(total, 0, 100)*100) / 100

	return domain.RiskAssessment{
		ResourceID: r.ID,
		Score:      score,
		Level:      domain.LevelForScore(score),
		IsSPOF:     spof,
		Dependents: in.Dependents,
		Factors:    rankFactors(factors),
	}
}

func tierBonus(dependents int, cfg Config) float64 {
	switch {
	case dependents >= cfg.TierHighThreshold:
		return cfg.TierHighBonus
	case dependents >= cfg.TierMidThreshold:
		return cfg.TierMidBonus
	case dependents >= 1:
		return cfg.TierLowBonus
	default:
		return 0
	}
}

// recencyContribution rewards recent changes: a change today contributes the
// full cap, one older than the window contributes nothing.
func recencyContribution(lastChange *time.Time, now time.Time, cfg Config) float64 {
	if lastChange == nil || cfg.RecencyWindowDays <= 0 {
		return 0
	}
	days := now.Sub(*lastChange).Hours() / 24
	if days < 0 {
		days = 0
	}
	recency := math.Max(0, cfg.RecencyWindowDays-days) / cfg.RecencyWindowDays * 100
	return math.Min(cfg.RecencyWeight*recency, cfg.RecencyCap)
}

// rankFactors orders factor strings by contribution, largest first. The
// multiplier entries carry zero weight and sort last, preserving insertion
// order among equals.
func rankFactors(factors []factor) []string {
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].weight > factors[j].weight
	})
	out := make([]string, len(factors))
	for i, f := range factors {
		out[i] = f.label
	}
	return out
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
