package ports

import (
	"context"
	"time"

	"github.com/architeacher/catalog/internal/domain/model"
)

type (
	// CacheResult holds the result of a cache lookup along with metadata.
	CacheResult[T any] struct {
		Data     T
		Hit      bool
		Key      string
		CachedAt time.Time
	}

	// ProductsCache keeps single products and filter results.
	ProductsCache interface {
		GetProduct(ctx context.Context, id model.ProductID) (*CacheResult[model.Product], error)
		SetProduct(ctx context.Context, product model.Product, ttl time.Duration) error

		GetProductList(ctx context.Context, filter model.ProductFilter) (*CacheResult[*model.ProductList], error)
		SetProductList(ctx context.Context, list *model.ProductList, filter model.ProductFilter, ttl time.Duration) error

		InvalidateProduct(ctx context.Context, id model.ProductID) error

		// InvalidateAllLists drops every cached filter result.
		InvalidateAllLists(ctx context.Context) error

		PurgeAll(ctx context.Context) (int64, error)

		IsHealthy(ctx context.Context) bool
	}
)
