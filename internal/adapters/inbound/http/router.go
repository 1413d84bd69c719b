package http

import (
	"fmt"
	"net/http"

	"github.com/architeacher/catalog/internal/adapters/inbound/http/handlers"
	"github.com/architeacher/catalog/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/catalog/internal/config"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/internal/usecases"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/architeacher/catalog/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/throttled/throttled/v2"
	"github.com/throttled/throttled/v2/store/memstore"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const baseURL = "/v1"

type RouterConfig struct {
	App              *usecases.Application
	Logger           logger.Logger
	MetricsClient    metrics.Client
	TracerProvider   otelTrace.TracerProvider
	Config           *config.ServiceConfig
	IdempotencyCache ports.IdempotencyCache
	// RateLimitStore defaults to an in-process store when nil.
	RateLimitStore throttled.GCRAStoreCtx
}

func NewRouter(cfg RouterConfig) (http.Handler, error) {
	router := chi.NewRouter()

	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(cfg.Logger))

	if cfg.Config.Telemetry.Traces.Enabled && cfg.TracerProvider != nil {
		router.Use(middleware.Tracer(cfg.TracerProvider))
		cfg.Logger.Info().Msg("distributed tracing enabled")
	}

	router.Use(middleware.SecurityHeaders(cfg.Config.App.APIVersion))
	router.Use(middleware.CORS(cfg.Config.HTTPServer.AllowedOrigins))

	if cfg.Config.Telemetry.Metrics.Enabled {
		router.Use(middleware.NewMetricsMiddleware(cfg.MetricsClient).Middleware)
		cfg.Logger.Info().Msg("HTTP metrics collection enabled")
	}

	if accessLog := cfg.Config.Logging.AccessLog; accessLog.Enabled {
		router.Use(middleware.NewHealthCheckFilter(accessLog.LogHealthChecks).Middleware)
		router.Use(middleware.AccessLogger(cfg.Logger, accessLog.IncludeQueryParams))
		cfg.Logger.Info().
			Bool("log_health_checks", accessLog.LogHealthChecks).
			Msg("structured access logging enabled")
	}

	if cfg.Config.ThrottledRateLimiting.Enabled {
		rateLimiter, err := newRateLimiter(cfg)
		if err != nil {
			return nil, err
		}

		router.Use(rateLimiter)
	}

	if cfg.Config.Compression.Enabled {
		router.Use(middleware.Compression(cfg.Config.Compression, cfg.MetricsClient))
	}

	router.Use(middleware.ConditionalGET())

	handlers.NewHealthHandler(cfg.App, cfg.Logger).Routes(router)
	router.Handle("/metrics", cfg.MetricsClient.Handler())

	productHandler := handlers.NewProductHandler(
		cfg.App,
		cfg.Logger,
		cfg.Config.App.APIVersion,
		cfg.Config.HTTPServer.MaxBodyBytes,
	)

	router.Route(baseURL, func(r chi.Router) {
		r.Use(middleware.Idempotency(
			cfg.IdempotencyCache,
			cfg.Config.Idempotency,
			cfg.Config.HTTPServer.MaxBodyBytes,
			cfg.Logger,
		))

		productHandler.Routes(r)
	})

	return router, nil
}

func newRateLimiter(cfg RouterConfig) (func(http.Handler) http.Handler, error) {
	store := cfg.RateLimitStore
	if store == nil {
		memStore, err := memstore.NewCtx(int(cfg.Config.ThrottledRateLimiting.MaxKeys))
		if err != nil {
			return nil, fmt.Errorf("creating rate limit store: %w", err)
		}

		store = memStore
	}

	rateLimiter, err := middleware.ThrottledRateLimitingMiddleware(cfg.Config.ThrottledRateLimiting, store, cfg.Logger)
	if err != nil {
		return nil, err
	}

	cfg.Logger.Info().
		Uint("requests_per_second", cfg.Config.ThrottledRateLimiting.RequestsPerSecond).
		Uint("burst_size", cfg.Config.ThrottledRateLimiting.BurstSize).
		Msg("rate limiting enabled")

	return rateLimiter, nil
}
