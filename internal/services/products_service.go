package services

import (
	"context"
	"fmt"

	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/pkg/circuitbreaker"
	"github.com/architeacher/catalog/pkg/logger"
)

// ProductsService evaluates catalog requests against the repository. Every
// repository call goes through the circuit breaker when one is configured.
type ProductsService struct {
	repo    ports.ProductsRepository
	breaker *circuitbreaker.CircuitBreaker[struct{}]
	logger  logger.Logger
}

func NewProductsService(
	repo ports.ProductsRepository,
	breaker *circuitbreaker.CircuitBreaker[struct{}],
	log logger.Logger,
) *ProductsService {
	return &ProductsService{
		repo:    repo,
		breaker: breaker,
		logger:  log,
	}
}

func (s *ProductsService) CreateProduct(
	ctx context.Context,
	name string,
	color model.Color,
	size model.Size,
	price float64,
) (model.Product, error) {
	product, err := model.NewProduct(name, color, size, price)
	if err != nil {
		return model.Product{}, err
	}

	err = s.guard(ctx, func(ctx context.Context) error {
		return s.repo.Save(ctx, product)
	})
	if err != nil {
		return model.Product{}, err
	}

	return product, nil
}

func (s *ProductsService) GetProduct(ctx context.Context, id model.ProductID) (model.Product, error) {
	var product model.Product

	err := s.guard(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.repo.FetchByID(ctx, id)

		return err
	})

	return product, err
}

func (s *ProductsService) FilterProducts(ctx context.Context, filter model.ProductFilter) (*model.ProductList, error) {
	criteria := model.FromProductFilter(filter)

	var (
		products []model.Product
		total    uint
	)

	err := s.guard(ctx, func(ctx context.Context) error {
		var err error
		products, total, err = s.repo.FindByCriteria(ctx, criteria)

		return err
	})
	if err != nil {
		return nil, err
	}

	pagination, err := paginate(criteria, products, total)
	if err != nil {
		return nil, fmt.Errorf("building pagination: %w", err)
	}

	filter.Page = criteria.Page()
	filter.Size = criteria.Size()

	return &model.ProductList{
		Products:   products,
		Pagination: pagination,
		Filters:    filter,
	}, nil
}

func (s *ProductsService) guard(ctx context.Context, fn func(context.Context) error) error {
	_, err := circuitbreaker.Execute(ctx, s.breaker, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})

	return err
}

// paginate describes the page window. The cursors point at the last and the
// first product of the page, keyed by the primary sort field.
func paginate(criteria model.Criteria, products []model.Product, total uint) (model.Pagination, error) {
	page, size := criteria.Page(), criteria.Size()

	pagination := model.Pagination{
		Page:        page,
		Size:        size,
		TotalItems:  total,
		TotalPages:  (total + size - 1) / size,
		HasNext:     page*size < total,
		HasPrevious: page > 1,
	}

	if len(products) == 0 {
		return pagination, nil
	}

	sortField := "createdAt"
	if sorting := criteria.Sorting(); len(sorting) > 0 {
		sortField = sorting[0].Field
		if sorting[0].Direction == model.SortDesc {
			sortField = "-" + sortField
		}
	}

	var err error

	if pagination.HasNext {
		last := model.NewCursorFromProduct(products[len(products)-1], sortField, model.CursorDirectionNext)
		if pagination.NextCursor, err = model.EncodeCursor(last); err != nil {
			return model.Pagination{}, err
		}
	}

	if pagination.HasPrevious {
		first := model.NewCursorFromProduct(products[0], sortField, model.CursorDirectionPrev)
		if pagination.PreviousCursor, err = model.EncodeCursor(first); err != nil {
			return model.Pagination{}, err
		}
	}

	return pagination, nil
}
