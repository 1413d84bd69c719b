package admin

import (
	"net/http"
	"runtime"
	"time"

	"github.com/architeacher/catalog/internal/adapters/inbound/http/handlers/shared"
	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	statusHealthy     = "healthy"
	statusUnhealthy   = "unhealthy"
	statusUnavailable = "unavailable"
)

// Handler exposes cache management and runtime details. It is mounted on the
// admin listener only, never on the public API.
type Handler struct {
	cache     ports.ProductsCache
	logger    logger.Logger
	startTime time.Time
}

// NewHandler accepts a nil cache, every cache route then answers 503.
func NewHandler(cache ports.ProductsCache, log logger.Logger) *Handler {
	return &Handler{
		cache:     cache,
		logger:    log,
		startTime: time.Now().UTC(),
	}
}

func (h *Handler) Routes(router chi.Router) {
	router.Get("/admin/system", h.SystemInfo)
	router.Get("/admin/cache/health", h.CacheHealth)
	router.Delete("/admin/cache/products", h.PurgeProducts)
	router.Delete("/admin/cache/products/lists", h.PurgeProductLists)
	router.Delete("/admin/cache/products/{id}", h.PurgeProduct)
}

func (h *Handler) CacheHealth(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": statusUnavailable,
			"error":  "cache not configured",
		})

		return
	}

	if !h.cache.IsHealthy(r.Context()) {
		shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": statusUnhealthy})

		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": statusHealthy})
}

// PurgeProducts drops cached products and cached filter results.
func (h *Handler) PurgeProducts(w http.ResponseWriter, r *http.Request) {
	if !h.cacheAvailable(w) {
		return
	}

	deleted, err := h.cache.PurgeAll(r.Context())
	if err != nil {
		h.fail(w, r, err, "failed to purge product caches")

		return
	}

	h.audit(r, "purge_all").Int64("deleted", deleted).Msg("product caches purged")

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "product caches purged",
		"deleted": deleted,
	})
}

func (h *Handler) PurgeProductLists(w http.ResponseWriter, r *http.Request) {
	if !h.cacheAvailable(w) {
		return
	}

	if err := h.cache.InvalidateAllLists(r.Context()); err != nil {
		h.fail(w, r, err, "failed to purge product list caches")

		return
	}

	h.audit(r, "purge_lists").Msg("product list caches purged")

	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "product list caches purged"})
}

func (h *Handler) PurgeProduct(w http.ResponseWriter, r *http.Request) {
	if !h.cacheAvailable(w) {
		return
	}

	raw := chi.URLParam(r, "id")

	id, err := model.ParseProductID(raw)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid product ID")

		return
	}

	if err := h.cache.InvalidateProduct(r.Context(), id); err != nil {
		h.fail(w, r, err, "failed to invalidate product cache")

		return
	}

	h.audit(r, "purge_product").Str("product_id", id.String()).Msg("product cache purged")

	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "product cache purged",
		"id":     id.String(),
	})
}

func (h *Handler) SystemInfo(w http.ResponseWriter, _ *http.Request) {
	uptime := time.Since(h.startTime)

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"go":         runtime.Version(),
		"cpuCores":   runtime.NumCPU(),
		"goroutines": runtime.NumGoroutine(),
		"uptime": map[string]any{
			"duration":        uptime.Round(time.Second).String(),
			"durationSeconds": int(uptime.Seconds()),
			"startedAt":       h.startTime,
		},
	})
}

func (h *Handler) cacheAvailable(w http.ResponseWriter) bool {
	if h.cache != nil {
		return true
	}

	shared.WriteError(w, http.StatusServiceUnavailable, "CACHE_UNAVAILABLE", "cache not available")

	return false
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	reqLogger := h.logger.WithContext(r.Context())
	reqLogger.Error().Err(err).Str("path", r.URL.Path).Msg(message)

	shared.WriteError(w, http.StatusInternalServerError, "CACHE_ERROR", message)
}

func (h *Handler) audit(r *http.Request, action string) *zerolog.Event {
	reqLogger := h.logger.WithContext(r.Context())

	return reqLogger.Info().Str("action", action).Str("remote_addr", r.RemoteAddr)
}
