package http

import (
	"net/http"

	"github.com/architeacher/catalog/internal/adapters/inbound/http/handlers/admin"
	"github.com/architeacher/catalog/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type AdminRouterConfig struct {
	ProductsCache ports.ProductsCache
	Logger        logger.Logger
}

// NewAdminRouter serves cache management. It is meant for an internal port.
func NewAdminRouter(cfg AdminRouterConfig) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(middleware.AccessLogger(cfg.Logger, false))

	if cfg.ProductsCache == nil {
		cfg.Logger.Warn().Msg("admin router: products cache not available, cache endpoints will return 503")
	}

	admin.NewHandler(cfg.ProductsCache, cfg.Logger).Routes(router)

	return router
}
