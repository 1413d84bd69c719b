package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/architeacher/catalog/internal/adapters/catalogfile"
	inboundhttp "github.com/architeacher/catalog/internal/adapters/inbound/http"
	"github.com/architeacher/catalog/internal/adapters/repos"
	"github.com/architeacher/catalog/internal/config"
	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/architeacher/catalog/internal/infrastructure"
	infraPostgres "github.com/architeacher/catalog/internal/infrastructure/postgres"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/internal/services"
	"github.com/architeacher/catalog/internal/usecases"
	"github.com/architeacher/catalog/pkg/circuitbreaker"
	"github.com/architeacher/catalog/pkg/decorator"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/architeacher/catalog/pkg/metrics"
	"github.com/architeacher/catalog/pkg/metrics/noop"
	"github.com/hashicorp/vault/api"
	"go.opentelemetry.io/otel/attribute"
)

const productsBreakerName = "products-repository"

func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithLogger(),
		WithSecrets(ctx),
		WithMetrics(ctx),
		WithTracing(ctx),
		WithCircuitBreaker(),
		WithProductsRepository(ctx),
		WithCache(ctx),
		WithServices(),
		WithApplication(),
		WithHTTPServer(),
		WithAdminServer(),
	}
}

// WithConfig loads the configuration from the environment. The configure
// functions run afterwards and may override any setting.
func WithConfig(configure ...func(*config.ServiceConfig)) DependencyOption {
	return func(d *dependencies) error {
		cfg, err := config.Init()
		if err != nil {
			return fmt.Errorf("initializing configuration: %w", err)
		}

		for _, fn := range configure {
			fn(cfg)
		}

		d.config = cfg

		return nil
	}
}

func WithLogger() DependencyOption {
	return func(d *dependencies) error {
		d.infra.logger = logger.New(
			d.config.Logging.Level,
			d.config.Logging.Format,
			logger.WithService(d.config.App.ServiceName, d.config.App.ServiceVersion),
		)

		return nil
	}
}

// WithSecrets overrides the database credentials with the ones kept in Vault.
func WithSecrets(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		storage := d.config.SecretsStorage
		if !storage.Enabled {
			return nil
		}

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = storage.Address
		vaultConfig.Timeout = storage.Timeout

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("creating Vault client: %w", err)
		}

		if storage.Token != "" {
			client.SetToken(storage.Token)
		}

		if storage.Namespace != "" {
			client.SetNamespace(storage.Namespace)
		}

		d.repos.secretsRepo = repos.NewVaultRepository(client)

		if err := infrastructure.LoadDatabaseSecrets(ctx, d.repos.secretsRepo, d.config, d.infra.logger); err != nil {
			return fmt.Errorf("loading secrets: %w", err)
		}

		return nil
	}
}

func WithMetrics(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		telemetry := d.config.Telemetry

		switch {
		case !telemetry.Metrics.Enabled:
			d.infra.metricsClient = noop.NewMetricsClient()
		case telemetry.Metrics.Backend == config.MetricsBackendOtel:
			meterProvider, shutdown, err := infrastructure.NewMeterProvider(ctx, d.config.App, telemetry)
			if err != nil {
				return fmt.Errorf("initializing meter provider: %w", err)
			}

			d.infra.metricsClient = metrics.NewOtelClient(meterProvider.Meter(d.config.App.ServiceName))
			d.onShutdown("meter provider", shutdown)
		default:
			d.infra.metricsClient = metrics.NewPrometheusClient(telemetry.Metrics.Namespace, nil)
		}

		d.onShutdown("metrics client", d.infra.metricsClient.Shutdown)

		return nil
	}
}

func WithTracing(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		telemetry := d.config.Telemetry
		if !telemetry.Enabled || !telemetry.Traces.Enabled {
			d.infra.tracerProvider = infrastructure.NewNoopTracerProvider()

			return nil
		}

		tracerProvider, shutdown, err := infrastructure.NewTracerProvider(ctx, d.config.App, telemetry)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}

		d.infra.tracerProvider = tracerProvider
		d.onShutdown("tracer provider", shutdown)

		return nil
	}
}

func WithCircuitBreaker() DependencyOption {
	return func(d *dependencies) error {
		cfg := d.config.CircuitBreaker

		d.infra.breaker = circuitbreaker.New[struct{}](
			circuitbreaker.Config{
				Name:             productsBreakerName,
				Enabled:          cfg.Enabled,
				MaxRequests:      cfg.MaxRequests,
				Interval:         cfg.Interval,
				Timeout:          cfg.Timeout,
				FailureThreshold: cfg.FailureThreshold,
			},
			circuitbreaker.WithIgnoredErrors(model.ErrProductNotFound, model.ErrDuplicateProduct),
			circuitbreaker.WithStateChangeHook(func(name, from, to string) {
				d.infra.logger.Warn().
					Str("breaker", name).
					Str("from", from).
					Str("to", to).
					Msg("circuit breaker state changed")

				d.infra.metricsClient.Inc(context.Background(), "circuit_breaker_transitions_total", 1,
					attribute.String("breaker", name),
					attribute.String("state", to),
				)
			}),
		)

		return nil
	}
}

func WithProductsRepository(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		switch d.config.Storage.Driver {
		case config.StorageDriverPostgres:
			pool, err := infraPostgres.NewPool(ctx, d.config.Database, d.config.Backoff, d.infra.logger)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}

			d.infra.dbPool = pool
			d.onShutdown("database pool", func(context.Context) error {
				pool.Close()

				return nil
			})

			repo := repos.NewProductsRepository(
				pool,
				repos.NewPgxScanner(),
				repos.NewCriteriaTranslator(&d.infra.logger),
				d.infra.logger,
			)

			if err := repo.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("preparing database schema: %w", err)
			}

			d.repos.productsRepo = repo
		default:
			d.repos.productsRepo = repos.NewMemoryRepository()
		}

		return seedCatalog(ctx, d)
	}
}

// seedCatalog loads the configured seed file into an empty repository.
func seedCatalog(ctx context.Context, d *dependencies) error {
	seedFile := d.config.Storage.SeedFile
	if seedFile == "" {
		return nil
	}

	_, total, err := d.repos.productsRepo.FindByCriteria(ctx, model.NewCriteria().Paginate(1, 1).Build())
	if err != nil {
		return fmt.Errorf("checking existing products: %w", err)
	}

	if total > 0 {
		d.infra.logger.Info().Uint("products", total).Msg("catalog already populated, skipping seed")

		return nil
	}

	products, err := catalogfile.Load(seedFile)
	if err != nil {
		return fmt.Errorf("loading seed catalog: %w", err)
	}

	for _, product := range products {
		if err := d.repos.productsRepo.Save(ctx, product); err != nil && !errors.Is(err, model.ErrDuplicateProduct) {
			return fmt.Errorf("seeding product %q: %w", product.Name, err)
		}
	}

	d.infra.logger.Info().Int("products", len(products)).Str("file", seedFile).Msg("catalog seeded")

	return nil
}

func WithCache(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Cache.Enabled {
			return nil
		}

		client := infrastructure.NewKeyDBClient(d.config.Cache, d.infra.logger)
		d.infra.cacheClient = client
		d.onShutdown("cache client", func(context.Context) error {
			return client.Close()
		})

		if err := client.Ping(ctx); err != nil {
			d.infra.logger.Warn().Err(err).Str("address", d.config.Cache.Address).Msg("cache unreachable at startup")
		}

		if d.config.ProductsCache.Enabled {
			d.repos.productsCache = repos.NewProductsCacheRepository(client, d.infra.logger)
		}

		if d.config.Idempotency.Enabled {
			d.repos.idempotencyRepo = repos.NewIdempotencyRepository(client)
		}

		if d.config.ThrottledRateLimiting.Distributed {
			d.repos.rateLimitStore = repos.NewRateLimitStore(client)
		}

		return nil
	}
}

func WithServices() DependencyOption {
	return func(d *dependencies) error {
		d.services.products = services.NewProductsService(d.repos.productsRepo, d.infra.breaker, d.infra.logger)

		var cacheHealth services.CacheHealthChecker
		if d.infra.cacheClient != nil {
			cacheHealth = d.infra.cacheClient
		}

		d.services.healthChecker = services.NewHealthService(d.config.Storage.Driver, d.repos.productsRepo, cacheHealth)

		return nil
	}
}

func WithApplication() DependencyOption {
	return func(d *dependencies) error {
		var caches usecases.Caches

		if cache := d.productsCache(); cache != nil {
			ttl := d.config.ProductsCache

			caches = usecases.Caches{
				GetProduct:           repos.NewGetProductCacheAdapter(cache),
				GetProductConfig:     decorator.CacheConfig{Enabled: true, TTL: ttl.ProductTTL},
				FilterProducts:       repos.NewFilterProductsCacheAdapter(cache),
				FilterProductsConfig: decorator.CacheConfig{Enabled: true, TTL: ttl.FilterTTL},
				Invalidator:          cache,
			}
		}

		d.app = usecases.NewApplication(
			d.services.products,
			d.repos.productsRepo,
			d.services.healthChecker,
			caches,
			d.infra.logger,
			d.infra.metricsClient,
			d.infra.tracerProvider,
		)

		return nil
	}
}

func WithHTTPServer() DependencyOption {
	return func(d *dependencies) error {
		var idempotencyCache ports.IdempotencyCache
		if d.repos.idempotencyRepo != nil {
			idempotencyCache = d.repos.idempotencyRepo
		}

		router, err := inboundhttp.NewRouter(inboundhttp.RouterConfig{
			App:              d.app,
			Logger:           d.infra.logger,
			MetricsClient:    d.infra.metricsClient,
			TracerProvider:   d.infra.tracerProvider,
			Config:           d.config,
			IdempotencyCache: idempotencyCache,
			RateLimitStore:   d.repos.rateLimitStore,
		})
		if err != nil {
			return fmt.Errorf("building router: %w", err)
		}

		cfg := d.config.HTTPServer
		d.infra.httpServer = &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.FormatUint(uint64(cfg.Port), 10)),
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		}

		return nil
	}
}

func WithAdminServer() DependencyOption {
	return func(d *dependencies) error {
		cfg := d.config.AdminServer
		if !cfg.Enabled {
			return nil
		}

		d.infra.adminHTTPServer = &http.Server{
			Addr: net.JoinHostPort(cfg.Host, strconv.FormatUint(uint64(cfg.Port), 10)),
			Handler: inboundhttp.NewAdminRouter(inboundhttp.AdminRouterConfig{
				ProductsCache: d.productsCache(),
				Logger:        d.infra.logger,
			}),
			ReadHeaderTimeout: d.config.HTTPServer.ReadTimeout,
		}

		return nil
	}
}
