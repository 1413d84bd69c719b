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
	FilterProductsQuery struct {
		Filter model.ProductFilter
	}

	FilterProductsQueryHandler = decorator.QueryHandler[FilterProductsQuery, *model.ProductList]

	filterProductsQueryHandler struct {
		productsService ports.ProductsService
	}
)

func NewFilterProductsQueryHandler(
	svc ports.ProductsService,
	cache decorator.Cache[FilterProductsQuery, *model.ProductList],
	cacheConfig decorator.CacheConfig,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FilterProductsQueryHandler {
	return decorator.ApplyQueryDecorators[FilterProductsQuery, *model.ProductList](
		decorator.NewQueryCachingDecorator[FilterProductsQuery, *model.ProductList](
			filterProductsQueryHandler{productsService: svc},
			cache,
			cacheConfig,
		),
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h filterProductsQueryHandler) Execute(ctx context.Context, query FilterProductsQuery) (*model.ProductList, error) {
	return h.productsService.FilterProducts(ctx, query.Filter)
}
