package ports

import "context"

// HealthChecker reports the state of the service and its dependencies.
type HealthChecker interface {
	CheckDependencies(ctx context.Context) map[string]DependencyStatus
}

// DependencyStatus represents the health status of a dependency.
type DependencyStatus struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// DatabaseHealthChecker defines the interface for storage health checks.
type DatabaseHealthChecker interface {
	Ping(ctx context.Context) error
}
