package ports

import (
	"context"

	"github.com/architeacher/catalog/internal/domain/model"
)

type (
	Saver interface {
		// Save stores a new product, ErrDuplicateProduct when the ID is taken.
		Save(ctx context.Context, product model.Product) error
	}

	Fetcher interface {
		// FetchByID retrieves a product by its ID.
		FetchByID(ctx context.Context, id model.ProductID) (model.Product, error)
	}

	Finder interface {
		// FindByCriteria returns the requested page of products satisfying the
		// criteria together with the number of all matches.
		FindByCriteria(ctx context.Context, criteria model.Criteria) ([]model.Product, uint, error)
	}

	// ProductsRepository defines the interface for product persistence operations.
	ProductsRepository interface {
		Saver
		Fetcher
		Finder
		DatabaseHealthChecker
	}
)
