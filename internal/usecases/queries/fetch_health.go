package queries

import (
	"context"
	"time"

	"github.com/architeacher/catalog/internal/config"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/pkg/decorator"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/architeacher/catalog/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	FetchHealthReportQuery struct{}

	HealthResult struct {
		Status       string                            `json:"status"`
		Version      string                            `json:"version"`
		Uptime       string                            `json:"uptime"`
		Dependencies map[string]ports.DependencyStatus `json:"dependencies"`
	}

	FetchHealthReportQueryHandler = decorator.QueryHandler[FetchHealthReportQuery, *HealthResult]

	fetchHealthReportQueryHandler struct {
		healthChecker ports.HealthChecker
		startTime     time.Time
	}
)

func NewFetchHealthReportQueryHandler(
	healthChecker ports.HealthChecker,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchHealthReportQueryHandler {
	return decorator.ApplyQueryDecorators[FetchHealthReportQuery, *HealthResult](
		fetchHealthReportQueryHandler{
			healthChecker: healthChecker,
			startTime:     time.Now(),
		},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h fetchHealthReportQueryHandler) Execute(ctx context.Context, _ FetchHealthReportQuery) (*HealthResult, error) {
	dependencies := h.healthChecker.CheckDependencies(ctx)

	overallStatus := "healthy"
	for _, status := range dependencies {
		if !status.Healthy {
			overallStatus = "unhealthy"

			break
		}
	}

	return &HealthResult{
		Status:       overallStatus,
		Version:      config.ServiceVersion,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Dependencies: dependencies,
	}, nil
}
