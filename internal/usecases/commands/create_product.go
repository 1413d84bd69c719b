package commands

import (
	"context"

	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/pkg/decorator"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/architeacher/catalog/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	CreateProductCommand struct {
		Name  string
		Color model.Color
		Size  model.Size
		Price float64
	}

	CreateProductCommandHandler = decorator.CommandHandler[CreateProductCommand, model.Product]

	// ListInvalidator drops cached filter results that a new product may change.
	ListInvalidator interface {
		InvalidateAllLists(ctx context.Context) error
	}

	createProductCommandHandler struct {
		productsService ports.ProductsService
		invalidator     ListInvalidator
		logger          logger.Logger
	}
)

// NewCreateProductCommandHandler wires the handler, invalidator may be nil
// when results are not cached.
func NewCreateProductCommandHandler(
	svc ports.ProductsService,
	invalidator ListInvalidator,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CreateProductCommandHandler {
	return decorator.ApplyCommandDecorators[CreateProductCommand, model.Product](
		createProductCommandHandler{
			productsService: svc,
			invalidator:     invalidator,
			logger:          log,
		},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h createProductCommandHandler) Handle(ctx context.Context, cmd CreateProductCommand) (model.Product, error) {
	product, err := h.productsService.CreateProduct(ctx, cmd.Name, cmd.Color, cmd.Size, cmd.Price)
	if err != nil {
		return model.Product{}, err
	}

	if h.invalidator != nil {
		if err := h.invalidator.InvalidateAllLists(ctx); err != nil {
			reqLogger := h.logger.WithContext(ctx)
			reqLogger.Warn().
				Err(err).
				Str("product_id", product.ID.String()).
				Msg("failed to invalidate cached product lists")
		}
	}

	return product, nil
}
