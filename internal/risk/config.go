package risk

import "github.com/riskradar/backend-go/internal/domain"

// Config holds every tunable the scoring engine reads. Construct one per
// deployment (or tenant); the engine never consults process-wide state.
type Config struct {
	// Criticality is the per-type baseline on the 0-100 scale. Types
	// missing from the table score DefaultBaseline.
	Criticality     map[domain.ResourceType]float64
	DefaultBaseline float64

	// ClassMultipliers scale the baseline by failure-mode class.
	ClassMultipliers map[domain.FailureModeClass]float64

	SPOFBonus              float64
	InfraNonRedundantBonus float64

	// Dependent-count tier bonuses.
	TierHighThreshold int
	TierHighBonus     float64
	TierMidThreshold  int
	TierMidBonus      float64
	TierLowBonus      float64

	// Bounded contributions: weight x normalized signal, capped.
	DependentWeight   float64
	DependentCap      float64
	DeployFailWeight  float64
	DeployFailCap     float64
	RecencyWeight     float64
	RecencyCap        float64
	RecencyWindowDays float64

	NonRedundantMultiplier float64
	RedundantMultiplier    float64
}

// DefaultConfig returns the stock scoring tables.
func DefaultConfig() Config {
	return Config{
		Criticality: map[domain.ResourceType]float64{
			domain.ResourceAPIGateway:   45,
			domain.ResourceFirewall:     42,
			domain.ResourceLoadBalancer: 40,
			domain.ResourceAuthService:  38,
			domain.ResourceDatabase:     35,
			domain.ResourceMessageQueue: 25,
			domain.ResourceCache:        20,
			domain.ResourceService:      20,
			domain.ResourceVM:           18,
			domain.ResourceDNS:          16,
			domain.ResourceContainer:    15,
			domain.ResourceStorage:      12,
			domain.ResourceVPC:          10,
			domain.ResourceSubnet:       6,
		},
		DefaultBaseline: 10,
		ClassMultipliers: map[domain.FailureModeClass]float64{
			domain.ClassEntryPoint:     1.30,
			domain.ClassSecurity:       1.25,
			domain.ClassInfrastructure: 1.20,
			domain.ClassDataStore:      1.15,
			domain.ClassMessaging:      1.10,
			domain.ClassCompute:        1.00,
			domain.ClassStorage:        0.90,
			domain.ClassNetworking:     0.85,
		},
		SPOFBonus:              15,
		InfraNonRedundantBonus: 20,
		TierHighThreshold:      10,
		TierHighBonus:          20,
		TierMidThreshold:       6,
		TierMidBonus:           10,
		TierLowBonus:           5,
		DependentWeight:        0.83,
		DependentCap:           25,
		DeployFailWeight:       0.67,
		DeployFailCap:          20,
		RecencyWeight:          0.33,
		RecencyCap:             10,
		RecencyWindowDays:      30,
		NonRedundantMultiplier: 1.20,
		RedundantMultiplier:    0.85,
	}
}

// classByType maps normalized resource types to failure-mode classes.
// Unknown types land in compute, the x1.00 baseline class.
var classByType = map[domain.ResourceType]domain.FailureModeClass{
	domain.ResourceAPIGateway:   domain.ClassEntryPoint,
	domain.ResourceLoadBalancer: domain.ClassEntryPoint,
	domain.ResourceFirewall:     domain.ClassSecurity,
	domain.ResourceAuthService:  domain.ClassSecurity,
	domain.ResourceVM:           domain.ClassInfrastructure,
	domain.ResourceDatabase:     domain.ClassDataStore,
	domain.ResourceCache:        domain.ClassDataStore,
	domain.ResourceMessageQueue: domain.ClassMessaging,
	domain.ResourceService:      domain.ClassCompute,
	domain.ResourceContainer:    domain.ClassCompute,
	domain.ResourceStorage:      domain.ClassStorage,
	domain.ResourceDNS:          domain.ClassNetworking,
	domain.ResourceVPC:          domain.ClassNetworking,
	domain.ResourceSubnet:       domain.ClassNetworking,
}

// ClassFor returns the failure-mode class for a resource type.
func ClassFor(t domain.ResourceType) domain.FailureModeClass {
	if c, ok := classByType[t]; ok {
		return c
	}
	return domain.ClassCompute
}
