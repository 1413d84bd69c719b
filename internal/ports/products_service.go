package ports

import (
	"context"

	"github.com/architeacher/catalog/internal/domain/model"
)

// ProductsService defines the product catalog operations.
type ProductsService interface {
	CreateProduct(ctx context.Context, name string, color model.Color, size model.Size, price float64) (model.Product, error)

	GetProduct(ctx context.Context, id model.ProductID) (model.Product, error)

	// FilterProducts evaluates the filter and returns the requested page.
	FilterProducts(ctx context.Context, filter model.ProductFilter) (*model.ProductList, error)
}
