package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/architeacher/catalog/internal/adapters/inbound/http/handlers/shared"
	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/architeacher/catalog/internal/usecases"
	"github.com/architeacher/catalog/internal/usecases/commands"
	"github.com/architeacher/catalog/internal/usecases/queries"
	"github.com/architeacher/catalog/pkg/circuitbreaker"
	"github.com/architeacher/catalog/pkg/decorator"
	"github.com/architeacher/catalog/pkg/idempotency"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const (
	codeNotFound           = "NOT_FOUND"
	codeConflict           = "CONFLICT"
	codeInternalError      = "INTERNAL_ERROR"
	codeServiceUnavailable = "SERVICE_UNAVAILABLE"
	codeInvalidID          = "INVALID_ID"
	codeInvalidJSON        = "INVALID_JSON"
	codeInvalidFilter      = "INVALID_FILTER"
	codeValidationFailed   = "VALIDATION_FAILED"

	maxPageSize = 100
)

var sortableFields = map[string]struct{}{
	"name":      {},
	"color":     {},
	"size":      {},
	"price":     {},
	"createdAt": {},
}

type (
	productData struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Color     string    `json:"color"`
		Size      string    `json:"size"`
		Price     float64   `json:"price"`
		CreatedAt time.Time `json:"createdAt"`
	}

	createProductRequest struct {
		Name  string   `json:"name"`
		Color string   `json:"color"`
		Size  string   `json:"size"`
		Price *float64 `json:"price"`
	}

	ProductHandler struct {
		app          *usecases.Application
		logger       logger.Logger
		apiVersion   string
		maxBodyBytes int64
	}
)

func NewProductHandler(app *usecases.Application, log logger.Logger, apiVersion string, maxBodyBytes int64) *ProductHandler {
	return &ProductHandler{
		app:          app,
		logger:       log,
		apiVersion:   apiVersion,
		maxBodyBytes: maxBodyBytes,
	}
}

func (h *ProductHandler) Routes(router chi.Router) {
	router.Get("/products", h.ListProducts)
	router.Post("/products", h.CreateProduct)
	router.Get("/products/{id}", h.GetProduct)
}

// ListProducts filters the catalog. Repeated color and size parameters are
// alternatives, every other parameter narrows the result.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseProductFilter(r.URL.Query())
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, codeInvalidFilter, err.Error())

		return
	}

	ctx := decorator.WithCacheStatus(r.Context())

	list, err := h.app.Queries.FilterProducts.Execute(ctx, queries.FilterProductsQuery{Filter: filter})
	if err != nil {
		h.writeServiceError(w, r, err)

		return
	}

	w.Header().Set(shared.HeaderCacheStatus, string(decorator.GetCacheStatus(ctx)))

	data := make([]productData, 0, len(list.Products))
	for _, product := range list.Products {
		data = append(data, toProductData(product))
	}

	shared.WriteEnveloped(w, http.StatusOK, shared.EnvelopedResponse{
		Data: data,
		Meta: shared.NewMeta(r, h.apiVersion),
		Pagination: &shared.PaginationData{
			Page:           list.Pagination.Page,
			Size:           list.Pagination.Size,
			TotalItems:     list.Pagination.TotalItems,
			TotalPages:     list.Pagination.TotalPages,
			HasNext:        list.Pagination.HasNext,
			HasPrevious:    list.Pagination.HasPrevious,
			NextCursor:     list.Pagination.NextCursor,
			PreviousCursor: list.Pagination.PreviousCursor,
		},
	})
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, codeInvalidID, "invalid product ID")

		return
	}

	ctx := decorator.WithCacheStatus(r.Context())

	product, err := h.app.Queries.GetProduct.Execute(ctx, queries.GetProductQuery{ID: id})
	if err != nil {
		h.writeServiceError(w, r, err)

		return
	}

	w.Header().Set(shared.HeaderCacheStatus, string(decorator.GetCacheStatus(ctx)))

	shared.WriteEnveloped(w, http.StatusOK, shared.EnvelopedResponse{
		Data: toProductData(product),
		Meta: shared.NewMeta(r, h.apiVersion),
	})
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, codeInvalidJSON, "invalid request body")

		return
	}

	if req.Price == nil {
		shared.WriteError(w, http.StatusUnprocessableEntity, codeValidationFailed, "product validation failed",
			shared.ErrorDetail{Field: "price", Code: "REQUIRED", Message: "price is required"})

		return
	}

	product, err := h.app.Commands.CreateProduct.Handle(r.Context(), commands.CreateProductCommand{
		Name:  req.Name,
		Color: model.Color(strings.ToLower(strings.TrimSpace(req.Color))),
		Size:  model.Size(strings.ToLower(strings.TrimSpace(req.Size))),
		Price: *req.Price,
	})
	if err != nil {
		h.writeServiceError(w, r, err)

		return
	}

	reqLogger := h.logger.WithContext(r.Context())

	event := reqLogger.Info().Str("product_id", product.ID.String())
	if key, ok := idempotency.FromContext(r.Context()); ok {
		event = event.Str("idempotency_key", key)
	}

	event.Msg("product created")

	w.Header().Set(shared.HeaderLocation, "/v1/products/"+product.ID.String())
	shared.WriteEnveloped(w, http.StatusCreated, shared.EnvelopedResponse{
		Data: toProductData(product),
		Meta: shared.NewMeta(r, h.apiVersion),
	})
}

func (h *ProductHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs *model.ValidationErrors

	switch {
	case errors.As(err, &verrs):
		details := make([]shared.ErrorDetail, 0, len(verrs.Errors))
		for _, verr := range verrs.Errors {
			details = append(details, shared.ErrorDetail{Field: verr.Field, Code: verr.Code, Message: verr.Message})
		}

		shared.WriteError(w, http.StatusUnprocessableEntity, codeValidationFailed, "product validation failed", details...)
	case errors.Is(err, model.ErrProductNotFound):
		shared.WriteError(w, http.StatusNotFound, codeNotFound, "product not found")
	case errors.Is(err, model.ErrDuplicateProduct):
		shared.WriteError(w, http.StatusConflict, codeConflict, "product already exists")
	case errors.Is(err, circuitbreaker.ErrCircuitOpen), errors.Is(err, circuitbreaker.ErrTooManyRequests):
		w.Header().Set("Retry-After", "30")
		shared.WriteError(w, http.StatusServiceUnavailable, codeServiceUnavailable, "product storage temporarily unavailable")
	default:
		reqLogger := h.logger.WithContext(r.Context())
		reqLogger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")

		shared.WriteError(w, http.StatusInternalServerError, codeInternalError, "internal server error")
	}
}

// ParseProductFilter reads a filter from query parameters. Unknown enum
// values, malformed numbers and unsupported sort fields are rejected.
func ParseProductFilter(values url.Values) (model.ProductFilter, error) {
	filter := model.DefaultProductFilter()

	for _, raw := range splitValues(values["color"]) {
		color, err := model.ParseColor(raw)
		if err != nil {
			return model.ProductFilter{}, fmt.Errorf("color %q: must be one of red, green, blue", raw)
		}

		filter.Colors = append(filter.Colors, color)
	}

	for _, raw := range splitValues(values["size"]) {
		size, err := model.ParseSize(raw)
		if err != nil {
			return model.ProductFilter{}, fmt.Errorf("size %q: must be one of small, medium, large", raw)
		}

		filter.Sizes = append(filter.Sizes, size)
	}

	var err error

	if filter.MinPrice, err = parsePrice(values, "minPrice"); err != nil {
		return model.ProductFilter{}, err
	}

	if filter.MaxPrice, err = parsePrice(values, "maxPrice"); err != nil {
		return model.ProductFilter{}, err
	}

	filter.Name = strings.TrimSpace(values.Get("name"))

	for _, sort := range splitValues(values["sort"]) {
		if _, ok := sortableFields[strings.TrimPrefix(sort, "-")]; !ok {
			return model.ProductFilter{}, fmt.Errorf("sort %q: unsupported field", sort)
		}

		filter.Sort = append(filter.Sort, sort)
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || page == 0 {
			return model.ProductFilter{}, fmt.Errorf("page %q: must be a positive integer", raw)
		}

		filter.Page = uint(page)
	}

	if raw := values.Get("pageSize"); raw != "" {
		size, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || size == 0 || size > maxPageSize {
			return model.ProductFilter{}, fmt.Errorf("pageSize %q: must be between 1 and %d", raw, maxPageSize)
		}

		filter.Size = uint(size)
	}

	return filter, nil
}

func parsePrice(values url.Values, key string) (*float64, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, fmt.Errorf("%s %q: must be a number", key, raw)
	}

	return &price, nil
}

// splitValues accepts both repeated parameters and comma separated lists.
func splitValues(raw []string) []string {
	var out []string

	for _, value := range raw {
		for part := range strings.SplitSeq(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

func toProductData(product model.Product) productData {
	return productData{
		ID:        product.ID.String(),
		Name:      product.Name,
		Color:     product.Color.String(),
		Size:      product.Size.String(),
		Price:     product.Price,
		CreatedAt: product.CreatedAt,
	}
}
