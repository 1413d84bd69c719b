package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/architeacher/catalog/internal/infrastructure"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

const (
	productCacheVersion = "v1"
	productKeyPrefix    = "product:" + productCacheVersion + ":"
	productListPrefix   = "products:list:" + productCacheVersion + ":"

	scanBatchSize = 100
)

type (
	cachedProduct struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Color     string    `json:"color"`
		Size      string    `json:"size"`
		Price     float64   `json:"price"`
		CreatedAt time.Time `json:"created_at"`
	}

	cachedProductList struct {
		Products   []cachedProduct  `json:"products"`
		Pagination model.Pagination `json:"pagination"`
		CachedAt   time.Time        `json:"cached_at"`
	}

	// ProductsCacheRepository implements ports.ProductsCache on KeyDB/Redis.
	// Filter results are keyed by a hash of the normalized filter.
	ProductsCacheRepository struct {
		client *infrastructure.KeydbClient
		logger logger.Logger
	}
)

func NewProductsCacheRepository(client *infrastructure.KeydbClient, log logger.Logger) *ProductsCacheRepository {
	return &ProductsCacheRepository{
		client: client,
		logger: log,
	}
}

func (r *ProductsCacheRepository) GetProduct(ctx context.Context, id model.ProductID) (*ports.CacheResult[model.Product], error) {
	key := productKey(id)

	data, err := r.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &ports.CacheResult[model.Product]{Key: key}, nil
		}

		return nil, fmt.Errorf("getting cached product: %w", err)
	}

	var cached cachedProduct
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("unmarshalling cached product: %w", err)
	}

	product, err := toDomainProduct(cached)
	if err != nil {
		return nil, fmt.Errorf("converting cached product: %w", err)
	}

	return &ports.CacheResult[model.Product]{
		Data:     product,
		Hit:      true,
		Key:      key,
		CachedAt: product.CreatedAt,
	}, nil
}

func (r *ProductsCacheRepository) SetProduct(ctx context.Context, product model.Product, ttl time.Duration) error {
	data, err := json.Marshal(toCachedProduct(product))
	if err != nil {
		return fmt.Errorf("marshalling product: %w", err)
	}

	if err := r.client.Set(ctx, productKey(product.ID), data, ttl); err != nil {
		return fmt.Errorf("setting cached product: %w", err)
	}

	return nil
}

func (r *ProductsCacheRepository) GetProductList(ctx context.Context, filter model.ProductFilter) (*ports.CacheResult[*model.ProductList], error) {
	key := productListKey(filter)

	data, err := r.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &ports.CacheResult[*model.ProductList]{Key: key}, nil
		}

		return nil, fmt.Errorf("getting cached product list: %w", err)
	}

	var cached cachedProductList
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("unmarshalling cached product list: %w", err)
	}

	products := make([]model.Product, len(cached.Products))
	for index := range cached.Products {
		product, err := toDomainProduct(cached.Products[index])
		if err != nil {
			return nil, fmt.Errorf("converting product at index %d: %w", index, err)
		}

		products[index] = product
	}

	return &ports.CacheResult[*model.ProductList]{
		Data: &model.ProductList{
			Products:   products,
			Pagination: cached.Pagination,
			Filters:    filter,
		},
		Hit:      true,
		Key:      key,
		CachedAt: cached.CachedAt,
	}, nil
}

func (r *ProductsCacheRepository) SetProductList(ctx context.Context, list *model.ProductList, filter model.ProductFilter, ttl time.Duration) error {
	cached := cachedProductList{
		Products:   make([]cachedProduct, len(list.Products)),
		Pagination: list.Pagination,
		CachedAt:   time.Now().UTC(),
	}

	for index, product := range list.Products {
		cached.Products[index] = toCachedProduct(product)
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshalling product list: %w", err)
	}

	if err := r.client.Set(ctx, productListKey(filter), data, ttl); err != nil {
		return fmt.Errorf("setting cached product list: %w", err)
	}

	return nil
}

// InvalidateAllLists removes every cached filter result. Single products stay
// cached since products never change after creation.
func (r *ProductsCacheRepository) InvalidateAllLists(ctx context.Context) error {
	deleted, err := r.purgeByPattern(ctx, productListPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating product lists: %w", err)
	}

	r.logger.Debug().Int64("deleted", deleted).Msg("product list caches invalidated")

	return nil
}

func (r *ProductsCacheRepository) InvalidateProduct(ctx context.Context, id model.ProductID) error {
	if err := r.client.Delete(ctx, productKey(id)); err != nil {
		return fmt.Errorf("invalidating product %s: %w", id, err)
	}

	return nil
}

// PurgeAll drops cached products and cached filter results and returns the
// number of deleted keys.
func (r *ProductsCacheRepository) PurgeAll(ctx context.Context) (int64, error) {
	products, err := r.purgeByPattern(ctx, productKeyPrefix+"*")
	if err != nil {
		return products, fmt.Errorf("purging products: %w", err)
	}

	lists, err := r.purgeByPattern(ctx, productListPrefix+"*")
	if err != nil {
		return products + lists, fmt.Errorf("purging product lists: %w", err)
	}

	return products + lists, nil
}

func (r *ProductsCacheRepository) IsHealthy(ctx context.Context) bool {
	return r.client.IsHealthy(ctx)
}

func (r *ProductsCacheRepository) purgeByPattern(ctx context.Context, pattern string) (int64, error) {
	var (
		cursor       uint64
		totalDeleted int64
	)

	for {
		keys, nextCursor, err := r.client.Scan(ctx, cursor, pattern, scanBatchSize)
		if err != nil {
			return totalDeleted, err
		}

		if len(keys) > 0 {
			if err := r.client.Delete(ctx, keys...); err != nil {
				return totalDeleted, fmt.Errorf("deleting keys: %w", err)
			}

			totalDeleted += int64(len(keys))
		}

		cursor = nextCursor
		if cursor == 0 {
			return totalDeleted, nil
		}
	}
}

func productKey(id model.ProductID) string {
	return productKeyPrefix + id.String()
}

func productListKey(filter model.ProductFilter) string {
	return productListPrefix + strconv.FormatUint(xxhash.Sum64String(canonicalFilter(filter)), 16)
}

// canonicalFilter renders a filter so that equivalent filters, e.g. with
// colors listed in another order, map to the same string.
func canonicalFilter(filter model.ProductFilter) string {
	colors := make([]string, len(filter.Colors))
	for index, color := range filter.Colors {
		colors[index] = color.String()
	}

	sizes := make([]string, len(filter.Sizes))
	for index, size := range filter.Sizes {
		sizes[index] = size.String()
	}

	slices.Sort(colors)
	colors = slices.Compact(colors)
	slices.Sort(sizes)
	sizes = slices.Compact(sizes)

	return fmt.Sprintf(
		"colors=%s&sizes=%s&min=%s&max=%s&name=%s&sort=%s&page=%d&size=%d",
		strings.Join(colors, ","),
		strings.Join(sizes, ","),
		formatBound(filter.MinPrice),
		formatBound(filter.MaxPrice),
		strings.ToLower(strings.TrimSpace(filter.Name)),
		strings.Join(filter.Sort, ","),
		filter.Page,
		filter.Size,
	)
}

func formatBound(bound *float64) string {
	if bound == nil {
		return "-"
	}

	return strconv.FormatFloat(*bound, 'g', -1, 64)
}

func toCachedProduct(product model.Product) cachedProduct {
	return cachedProduct{
		ID:        product.ID.String(),
		Name:      product.Name,
		Color:     product.Color.String(),
		Size:      product.Size.String(),
		Price:     product.Price,
		CreatedAt: product.CreatedAt,
	}
}

func toDomainProduct(cached cachedProduct) (model.Product, error) {
	return convertRowToProduct(productRow{
		ID:        cached.ID,
		Name:      cached.Name,
		Color:     cached.Color,
		Size:      cached.Size,
		Price:     cached.Price,
		CreatedAt: cached.CreatedAt,
	})
}
