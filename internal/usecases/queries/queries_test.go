package queries_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/architeacher/catalog/internal/infrastructure"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/internal/usecases/queries"
	"github.com/architeacher/catalog/pkg/decorator"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/architeacher/catalog/pkg/metrics/noop"
	"github.com/stretchr/testify/require"
)

type mockProductsService struct {
	mu               sync.Mutex
	calls            int
	getProductFn     func(ctx context.Context, id model.ProductID) (model.Product, error)
	filterProductsFn func(ctx context.Context, filter model.ProductFilter) (*model.ProductList, error)
}

func (m *mockProductsService) CreateProduct(_ context.Context, name string, color model.Color, size model.Size, price float64) (model.Product, error) {
	return model.NewProduct(name, color, size, price)
}

func (m *mockProductsService) GetProduct(ctx context.Context, id model.ProductID) (model.Product, error) {
	m.record()

	if m.getProductFn != nil {
		return m.getProductFn(ctx, id)
	}

	return model.Product{}, model.ErrProductNotFound
}

func (m *mockProductsService) FilterProducts(ctx context.Context, filter model.ProductFilter) (*model.ProductList, error) {
	m.record()

	if m.filterProductsFn != nil {
		return m.filterProductsFn(ctx, filter)
	}

	return &model.ProductList{Products: []model.Product{}, Filters: filter}, nil
}

func (m *mockProductsService) record() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
}

func (m *mockProductsService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

type mockHealthChecker struct {
	pingFn func(ctx context.Context) error
}

func (m mockHealthChecker) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}

	return nil
}

type mockDependencyChecker map[string]ports.DependencyStatus

func (m mockDependencyChecker) CheckDependencies(_ context.Context) map[string]ports.DependencyStatus {
	return m
}

type mockFilterCache struct {
	mu      sync.Mutex
	entries map[string]*model.ProductList
	getErr  error
	stored  chan struct{}
}

func newMockFilterCache() *mockFilterCache {
	return &mockFilterCache{
		entries: make(map[string]*model.ProductList),
		stored:  make(chan struct{}, 1),
	}
}

func (m *mockFilterCache) Get(_ context.Context, query queries.FilterProductsQuery) (*model.ProductList, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, false, m.getErr
	}

	list, ok := m.entries[query.Filter.Name]

	return list, ok, nil
}

func (m *mockFilterCache) Set(_ context.Context, query queries.FilterProductsQuery, result *model.ProductList, _ time.Duration) error {
	m.mu.Lock()
	m.entries[query.Filter.Name] = result
	m.mu.Unlock()

	m.stored <- struct{}{}

	return nil
}

func exampleProducts(t *testing.T) []model.Product {
	t.Helper()

	products := make([]model.Product, 0, 4)

	for _, p := range []struct {
		name  string
		color model.Color
		size  model.Size
		price float64
	}{
		{"Apple", model.ColorGreen, model.SizeSmall, 10},
		{"Tree", model.ColorGreen, model.SizeLarge, 20},
		{"House", model.ColorBlue, model.SizeLarge, 100},
		{"Car", model.ColorRed, model.SizeLarge, 7000},
	} {
		product, err := model.NewProduct(p.name, p.color, p.size, p.price)
		require.NoError(t, err)

		products = append(products, product)
	}

	return products
}

func TestGetProductQueryHandler(t *testing.T) {
	t.Parallel()

	log := logger.NewTestLogger()
	tp := infrastructure.NewNoopTracerProvider()
	mc := noop.NewMetricsClient()

	product := exampleProducts(t)[0]

	cases := []struct {
		name        string
		id          model.ProductID
		setupSvc    func(*mockProductsService)
		expectedErr error
	}{
		{
			name: "product found",
			id:   product.ID,
			setupSvc: func(m *mockProductsService) {
				m.getProductFn = func(_ context.Context, id model.ProductID) (model.Product, error) {
					if id == product.ID {
						return product, nil
					}

					return model.Product{}, model.ErrProductNotFound
				}
			},
		},
		{
			name:        "product not found",
			id:          model.NewProductID(),
			expectedErr: model.ErrProductNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockProductsService{}
			if tc.setupSvc != nil {
				tc.setupSvc(svc)
			}

			handler := queries.NewGetProductQueryHandler(svc, nil, decorator.CacheConfig{}, log, mc, tp)

			result, err := handler.Execute(t.Context(), queries.GetProductQuery{ID: tc.id})

			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)

				return
			}

			require.NoError(t, err)
			require.Equal(t, product, result)
		})
	}
}

func TestFilterProductsQueryHandler(t *testing.T) {
	t.Parallel()

	log := logger.NewTestLogger()
	tp := infrastructure.NewNoopTracerProvider()
	mc := noop.NewMetricsClient()

	catalog := exampleProducts(t)

	cases := []struct {
		name          string
		filter        model.ProductFilter
		expectedNames []string
	}{
		{
			name:          "green products",
			filter:        model.ProductFilter{Colors: []model.Color{model.ColorGreen}},
			expectedNames: []string{"Apple", "Tree"},
		},
		{
			name:          "large products",
			filter:        model.ProductFilter{Sizes: []model.Size{model.SizeLarge}},
			expectedNames: []string{"Tree", "House", "Car"},
		},
		{
			name:          "red products",
			filter:        model.ProductFilter{Colors: []model.Color{model.ColorRed}},
			expectedNames: []string{"Car"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockProductsService{
				filterProductsFn: func(_ context.Context, filter model.ProductFilter) (*model.ProductList, error) {
					products, total := model.FromProductFilter(filter).Apply(catalog)

					return &model.ProductList{
						Products:   products,
						Pagination: model.Pagination{TotalItems: total},
						Filters:    filter,
					}, nil
				},
			}

			handler := queries.NewFilterProductsQueryHandler(svc, nil, decorator.CacheConfig{}, log, mc, tp)

			result, err := handler.Execute(t.Context(), queries.FilterProductsQuery{Filter: tc.filter})
			require.NoError(t, err)

			names := make([]string, 0, len(result.Products))
			for _, product := range result.Products {
				names = append(names, product.Name)
			}

			require.Equal(t, tc.expectedNames, names)
		})
	}
}

func TestFilterProductsQueryHandler_Caching(t *testing.T) {
	t.Parallel()

	svc := &mockProductsService{}
	cache := newMockFilterCache()

	handler := queries.NewFilterProductsQueryHandler(
		svc,
		cache,
		decorator.CacheConfig{Enabled: true, TTL: time.Minute},
		logger.NewTestLogger(),
		noop.NewMetricsClient(),
		infrastructure.NewNoopTracerProvider(),
	)

	query := queries.FilterProductsQuery{Filter: model.ProductFilter{Name: "tr"}}

	_, err := handler.Execute(t.Context(), query)
	require.NoError(t, err)

	select {
	case <-cache.stored:
	case <-time.After(time.Second):
		t.Fatal("result was not stored in the cache")
	}

	_, err = handler.Execute(t.Context(), query)
	require.NoError(t, err)
	require.Equal(t, 1, svc.callCount())
}

func TestFilterProductsQueryHandler_CacheErrorFallsBackToService(t *testing.T) {
	t.Parallel()

	svc := &mockProductsService{}
	cache := newMockFilterCache()
	cache.getErr = errors.New("cache unreachable")

	handler := queries.NewFilterProductsQueryHandler(
		svc,
		cache,
		decorator.CacheConfig{Enabled: true, TTL: time.Minute},
		logger.NewTestLogger(),
		noop.NewMetricsClient(),
		infrastructure.NewNoopTracerProvider(),
	)

	result, err := handler.Execute(t.Context(), queries.FilterProductsQuery{})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, 1, svc.callCount())
}

func TestFetchLivenessQueryHandler(t *testing.T) {
	t.Parallel()

	handler := queries.NewFetchLivenessQueryHandler(
		logger.NewTestLogger(),
		noop.NewMetricsClient(),
		infrastructure.NewNoopTracerProvider(),
	)

	result, err := handler.Execute(t.Context(), queries.FetchLivenessQuery{})
	require.NoError(t, err)
	require.Equal(t, "ok", result.Status)
}

func TestFetchReadinessQueryHandler(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name           string
		pingErr        error
		expectedStatus string
		expectedReady  bool
	}{
		{name: "storage reachable", expectedStatus: "ok", expectedReady: true},
		{name: "storage unreachable", pingErr: errors.New("refused"), expectedStatus: "unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			checker := mockHealthChecker{pingFn: func(context.Context) error { return tc.pingErr }}
			handler := queries.NewFetchReadinessQueryHandler(
				checker,
				logger.NewTestLogger(),
				noop.NewMetricsClient(),
				infrastructure.NewNoopTracerProvider(),
			)

			result, err := handler.Execute(t.Context(), queries.FetchReadinessQuery{})
			require.NoError(t, err)
			require.Equal(t, tc.expectedStatus, result.Status)
			require.Equal(t, tc.expectedReady, result.Ready)
		})
	}
}

func TestFetchHealthReportQueryHandler(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name           string
		dependencies   mockDependencyChecker
		expectedStatus string
	}{
		{
			name: "all dependencies healthy",
			dependencies: mockDependencyChecker{
				"postgres": {Healthy: true},
				"cache":    {Healthy: true},
			},
			expectedStatus: "healthy",
		},
		{
			name: "cache unhealthy",
			dependencies: mockDependencyChecker{
				"postgres": {Healthy: true},
				"cache":    {Healthy: false, Message: "cache unreachable"},
			},
			expectedStatus: "unhealthy",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := queries.NewFetchHealthReportQueryHandler(
				tc.dependencies,
				logger.NewTestLogger(),
				noop.NewMetricsClient(),
				infrastructure.NewNoopTracerProvider(),
			)

			result, err := handler.Execute(t.Context(), queries.FetchHealthReportQuery{})
			require.NoError(t, err)
			require.Equal(t, tc.expectedStatus, result.Status)
			require.Len(t, result.Dependencies, len(tc.dependencies))
		})
	}
}
