package queries

import (
	"context"

	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/pkg/decorator"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/architeacher/catalog/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	GetProductQuery struct {
		ID model.ProductID
	}

	GetProductQueryHandler = decorator.QueryHandler[GetProductQuery, model.Product]

	getProductQueryHandler struct {
		productsService ports.ProductsService
	}
)

func NewGetProductQueryHandler(
	svc ports.ProductsService,
	cache decorator.Cache[GetProductQuery, model.Product],
	cacheConfig decorator.CacheConfig,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) GetProductQueryHandler {
	return decorator.ApplyQueryDecorators[GetProductQuery, model.Product](
		decorator.NewQueryCachingDecorator[GetProductQuery, model.Product](
			getProductQueryHandler{productsService: svc},
			cache,
			cacheConfig,
		),
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h getProductQueryHandler) Execute(ctx context.Context, query GetProductQuery) (model.Product, error) {
	return h.productsService.GetProduct(ctx, query.ID)
}
