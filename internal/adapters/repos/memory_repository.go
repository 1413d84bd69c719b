package repos

import (
	"context"
	"slices"
	"sync"

	"github.com/architeacher/catalog/internal/domain/model"
)

// MemoryRepository keeps products in insertion order and evaluates criteria
// in Go. It backs the service when no database is configured.
type MemoryRepository struct {
	mu       sync.RWMutex
	products []model.Product
	index    map[model.ProductID]int
}

func NewMemoryRepository(products ...model.Product) *MemoryRepository {
	repo := &MemoryRepository{
		products: make([]model.Product, 0, len(products)),
		index:    make(map[model.ProductID]int, len(products)),
	}

	for _, product := range products {
		if _, ok := repo.index[product.ID]; ok {
			continue
		}

		repo.index[product.ID] = len(repo.products)
		repo.products = append(repo.products, product)
	}

	return repo
}

func (r *MemoryRepository) Save(ctx context.Context, product model.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[product.ID]; ok {
		return model.ErrDuplicateProduct
	}

	r.index[product.ID] = len(r.products)
	r.products = append(r.products, product)

	return nil
}

func (r *MemoryRepository) FetchByID(ctx context.Context, id model.ProductID) (model.Product, error) {
	if err := ctx.Err(); err != nil {
		return model.Product{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	position, ok := r.index[id]
	if !ok {
		return model.Product{}, model.ErrProductNotFound
	}

	return r.products[position], nil
}

func (r *MemoryRepository) FindByCriteria(ctx context.Context, criteria model.Criteria) ([]model.Product, uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	snapshot := slices.Clone(r.products)
	r.mu.RUnlock()

	products, total := criteria.Apply(snapshot)

	return products, total, nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
