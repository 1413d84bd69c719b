package runtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/architeacher/catalog/internal/adapters/repos"
	"github.com/architeacher/catalog/internal/config"
	"github.com/architeacher/catalog/internal/infrastructure"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/internal/usecases"
	"github.com/architeacher/catalog/pkg/circuitbreaker"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/architeacher/catalog/pkg/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/throttled/throttled/v2"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	infrastructureDep struct {
		httpServer      *http.Server
		adminHTTPServer *http.Server
		cacheClient     *infrastructure.KeydbClient
		dbPool          *pgxpool.Pool
		logger          logger.Logger
		metricsClient   metrics.Client
		tracerProvider  otelTrace.TracerProvider
		breaker         *circuitbreaker.CircuitBreaker[struct{}]
	}

	repositories struct {
		secretsRepo     ports.SecretsRepository
		productsRepo    ports.ProductsRepository
		productsCache   *repos.ProductsCacheRepository
		idempotencyRepo ports.IdempotencyCache
		rateLimitStore  throttled.GCRAStoreCtx
	}

	servicesDep struct {
		products      ports.ProductsService
		healthChecker ports.HealthChecker
	}

	dependencies struct {
		config *config.ServiceConfig

		infra infrastructureDep

		repos repositories

		services servicesDep

		app *usecases.Application

		// cleanupFuncs run in reverse registration order on shutdown.
		cleanupFuncs []cleanupFunc
	}

	cleanupFunc struct {
		resource string
		fn       func(ctx context.Context) error
	}

	DependencyOption func(*dependencies) error
)

func initializeDependencies(
	ctx context.Context,
	configure []func(*config.ServiceConfig),
	opts ...DependencyOption,
) (*dependencies, error) {
	deps := &dependencies{}

	allOpts := append([]DependencyOption{WithConfig(configure...)}, defaultOptions(ctx)...)
	allOpts = append(allOpts, opts...)

	for _, opt := range allOpts {
		if err := opt(deps); err != nil {
			deps.cleanup(ctx)

			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	return deps, nil
}

func (d *dependencies) onShutdown(resource string, fn func(ctx context.Context) error) {
	d.cleanupFuncs = append(d.cleanupFuncs, cleanupFunc{resource: resource, fn: fn})
}

func (d *dependencies) cleanup(ctx context.Context) {
	for index := len(d.cleanupFuncs) - 1; index >= 0; index-- {
		entry := d.cleanupFuncs[index]

		if err := entry.fn(ctx); err != nil {
			d.infra.logger.Error().
				Err(err).
				Str("resource", entry.resource).
				Msg("failed to shutdown the resource gracefully")
		}
	}

	d.cleanupFuncs = nil
}

// productsCache returns nil, not a typed nil, when caching is off.
func (d *dependencies) productsCache() ports.ProductsCache {
	if d.repos.productsCache == nil {
		return nil
	}

	return d.repos.productsCache
}
