package handlers

import (
	"net/http"

	"github.com/architeacher/catalog/internal/adapters/inbound/http/handlers/shared"
	"github.com/architeacher/catalog/internal/usecases"
	"github.com/architeacher/catalog/internal/usecases/queries"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type HealthHandler struct {
	app    *usecases.Application
	logger logger.Logger
}

func NewHealthHandler(app *usecases.Application, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		app:    app,
		logger: log,
	}
}

func (h *HealthHandler) Routes(router chi.Router) {
	router.Get("/health", h.HealthReport)
	router.Get("/health/liveness", h.Liveness)
	router.Get("/health/readiness", h.Readiness)
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchLiveness.Execute(r.Context(), queries.FetchLivenessQuery{})
	if err != nil {
		h.fail(w, r, err)

		return
	}

	shared.WriteJSON(w, http.StatusOK, result)
}

// Readiness answers 503 while the product storage cannot be reached.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchReadiness.Execute(r.Context(), queries.FetchReadinessQuery{})
	if err != nil {
		h.fail(w, r, err)

		return
	}

	status := http.StatusOK
	if !result.Ready {
		status = http.StatusServiceUnavailable
	}

	shared.WriteJSON(w, status, result)
}

func (h *HealthHandler) HealthReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchHealthReport.Execute(r.Context(), queries.FetchHealthReportQuery{})
	if err != nil {
		h.fail(w, r, err)

		return
	}

	status := http.StatusOK
	if result.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	shared.WriteJSON(w, status, result)
}

func (h *HealthHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	reqLogger := h.logger.WithContext(r.Context())
	reqLogger.Error().Err(err).Str("path", r.URL.Path).Msg("health check failed")

	shared.WriteError(w, http.StatusInternalServerError, codeInternalError, "health check failed")
}
