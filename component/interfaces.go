package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name" yaml:"name"`
	Status  HealthStatus `json:"status" yaml:"status"`
	Message string       `json:"message,omitempty" yaml:"message,omitempty"`
}

// Component is a lifecycle-managed part of a jig process: a participant, the
// telemetry exporters and so on.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop shuts the component down and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description summarizes what a component is and how it is configured.
type Description struct {
	// Name is the human-readable display name. If empty, the component's
	// Name() is used.
	Name string `json:"name" yaml:"name"`
	// Type categorizes the component: "participant", "telemetry".
	Type string `json:"type" yaml:"type"`
	// Details is a one-line summary, e.g. "POST 127.0.0.1:3000/my/index (json)".
	Details string `json:"details" yaml:"details"`
	// Port is the primary port, 0 if not applicable.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
}

// Describable is optionally implemented by components that can describe
// themselves for the startup summary.
type Describable interface {
	Describe() Description
}
