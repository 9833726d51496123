package domain

import "time"

// ResourceType is the normalized kind of an infrastructure resource
type ResourceType string

const (
	ResourceAPIGateway   ResourceType = "api_gateway"
	ResourceLoadBalancer ResourceType = "load_balancer"
	ResourceFirewall     ResourceType = "firewall"
	ResourceAuthService  ResourceType = "auth_service"
	ResourceDatabase     ResourceType = "database"
	ResourceCache        ResourceType = "cache"
	ResourceMessageQueue ResourceType = "message_queue"
	ResourceService      ResourceType = "service"
	ResourceVM           ResourceType = "vm"
	ResourceContainer    ResourceType = "container"
	ResourceStorage      ResourceType = "storage_bucket"
	ResourceDNS          ResourceType = "dns"
	ResourceVPC          ResourceType = "vpc"
	ResourceSubnet       ResourceType = "subnet"
)

// FailureModeClass groups resource types by how they fail
type FailureModeClass string

const (
	ClassEntryPoint     FailureModeClass = "entry_point"
	ClassSecurity       FailureModeClass = "security"
	ClassInfrastructure FailureModeClass = "infrastructure"
	ClassDataStore      FailureModeClass = "data_store"
	ClassMessaging      FailureModeClass = "messaging"
	ClassCompute        FailureModeClass = "compute"
	ClassStorage        FailureModeClass = "storage"
	ClassNetworking     FailureModeClass = "networking"
)

// Resource is a node in the topology graph. Discovery creates it; this
// engine treats it as read-only apart from attribute refresh.
type Resource struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Type              ResourceType      `json:"type"`
	Environment       string            `json:"environment,omitempty"`
	Redundant         bool              `json:"redundant"`
	Zones             []string          `json:"zones,omitempty"`
	ResourceGroup     string            `json:"resource_group,omitempty"`
	Aliases           []string          `json:"aliases,omitempty"`
	DeployFailureRate float64           `json:"deploy_failure_rate,omitempty"`
	LastChange        *time.Time        `json:"last_change,omitempty"`
	Labels            map[string]string `json:"labels,omitempty"`
	Metadata          map[string]any    `json:"metadata,omitempty"`
}
