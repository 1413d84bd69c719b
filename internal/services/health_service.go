package services

import (
	"context"
	"fmt"
	"time"

	"github.com/architeacher/catalog/internal/ports"
)

type (
	// CacheHealthChecker is satisfied by the products cache.
	CacheHealthChecker interface {
		IsHealthy(ctx context.Context) bool
	}

	// HealthService reports the storage and, when configured, the cache.
	HealthService struct {
		storageName string
		storage     ports.DatabaseHealthChecker
		cache       CacheHealthChecker
	}
)

func NewHealthService(storageName string, storage ports.DatabaseHealthChecker, cache CacheHealthChecker) *HealthService {
	return &HealthService{
		storageName: storageName,
		storage:     storage,
		cache:       cache,
	}
}

func (s *HealthService) CheckDependencies(ctx context.Context) map[string]ports.DependencyStatus {
	dependencies := make(map[string]ports.DependencyStatus, 2)

	start := time.Now()
	err := s.storage.Ping(ctx)

	status := ports.DependencyStatus{
		Healthy: err == nil,
		Latency: fmt.Sprintf("%dms", time.Since(start).Milliseconds()),
	}
	if err != nil {
		status.Message = err.Error()
	}

	dependencies[s.storageName] = status

	if s.cache != nil {
		start = time.Now()
		healthy := s.cache.IsHealthy(ctx)

		status = ports.DependencyStatus{
			Healthy: healthy,
			Latency: fmt.Sprintf("%dms", time.Since(start).Milliseconds()),
		}
		if !healthy {
			status.Message = "cache unreachable"
		}

		dependencies["cache"] = status
	}

	return dependencies
}
