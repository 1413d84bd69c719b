package usecases

import (
	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/internal/usecases/commands"
	"github.com/architeacher/catalog/internal/usecases/queries"
	"github.com/architeacher/catalog/pkg/decorator"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/architeacher/catalog/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Commands struct {
		CreateProduct commands.CreateProductCommandHandler
	}

	Queries struct {
		GetProduct        queries.GetProductQueryHandler
		FilterProducts    queries.FilterProductsQueryHandler
		FetchLiveness     queries.FetchLivenessQueryHandler
		FetchReadiness    queries.FetchReadinessQueryHandler
		FetchHealthReport queries.FetchHealthReportQueryHandler
	}

	// Caches holds the query result caches. A nil cache or a disabled config
	// bypasses caching for that query.
	Caches struct {
		GetProduct           decorator.Cache[queries.GetProductQuery, model.Product]
		GetProductConfig     decorator.CacheConfig
		FilterProducts       decorator.Cache[queries.FilterProductsQuery, *model.ProductList]
		FilterProductsConfig decorator.CacheConfig
		Invalidator          commands.ListInvalidator
	}

	Application struct {
		Commands Commands
		Queries  Queries
	}
)

func NewApplication(
	productsSvc ports.ProductsService,
	dbHealthChecker ports.DatabaseHealthChecker,
	healthChecker ports.HealthChecker,
	caches Caches,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) *Application {
	return &Application{
		Commands: Commands{
			CreateProduct: commands.NewCreateProductCommandHandler(productsSvc, caches.Invalidator, log, metricsClient, tracerProvider),
		},
		Queries: Queries{
			GetProduct: queries.NewGetProductQueryHandler(
				productsSvc, caches.GetProduct, caches.GetProductConfig, log, metricsClient, tracerProvider,
			),
			FilterProducts: queries.NewFilterProductsQueryHandler(
				productsSvc, caches.FilterProducts, caches.FilterProductsConfig, log, metricsClient, tracerProvider,
			),
			FetchLiveness:     queries.NewFetchLivenessQueryHandler(log, metricsClient, tracerProvider),
			FetchReadiness:    queries.NewFetchReadinessQueryHandler(dbHealthChecker, log, metricsClient, tracerProvider),
			FetchHealthReport: queries.NewFetchHealthReportQueryHandler(healthChecker, log, metricsClient, tracerProvider),
		},
	}
}
