package repos

import (
	"context"
	"time"

	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/internal/usecases/queries"
)

type (
	// GetProductCacheAdapter adapts ProductsCache for GetProductQuery.
	GetProductCacheAdapter struct {
		cache ports.ProductsCache
	}

	// FilterProductsCacheAdapter adapts ProductsCache for FilterProductsQuery.
	FilterProductsCacheAdapter struct {
		cache ports.ProductsCache
	}
)

func NewGetProductCacheAdapter(cache ports.ProductsCache) *GetProductCacheAdapter {
	return &GetProductCacheAdapter{cache: cache}
}

func (a *GetProductCacheAdapter) Get(ctx context.Context, query queries.GetProductQuery) (model.Product, bool, error) {
	result, err := a.cache.GetProduct(ctx, query.ID)
	if err != nil {
		return model.Product{}, false, err
	}

	return result.Data, result.Hit, nil
}

func (a *GetProductCacheAdapter) Set(ctx context.Context, _ queries.GetProductQuery, result model.Product, ttl time.Duration) error {
	return a.cache.SetProduct(ctx, result, ttl)
}

func NewFilterProductsCacheAdapter(cache ports.ProductsCache) *FilterProductsCacheAdapter {
	return &FilterProductsCacheAdapter{cache: cache}
}

func (a *FilterProductsCacheAdapter) Get(ctx context.Context, query queries.FilterProductsQuery) (*model.ProductList, bool, error) {
	result, err := a.cache.GetProductList(ctx, query.Filter)
	if err != nil {
		return nil, false, err
	}

	return result.Data, result.Hit, nil
}

func (a *FilterProductsCacheAdapter) Set(ctx context.Context, query queries.FilterProductsQuery, result *model.ProductList, ttl time.Duration) error {
	return a.cache.SetProductList(ctx, result, query.Filter, ttl)
}
