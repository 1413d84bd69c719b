package decorator

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/architeacher/catalog/usecases"

type (
	commandTracingDecorator[C Command, R any] struct {
		base           CommandHandler[C, R]
		tracerProvider otelTrace.TracerProvider
	}

	queryTracingDecorator[Q Query, R Result] struct {
		base           QueryHandler[Q, R]
		tracerProvider otelTrace.TracerProvider
	}
)

func (d commandTracingDecorator[C, R]) Handle(ctx context.Context, cmd C) (result R, err error) {
	name := generateActionName(cmd)

	ctx, span := tracer(d.tracerProvider).Start(ctx, "command."+name,
		otelTrace.WithAttributes(attribute.String("usecase.command", name)),
	)
	defer func() {
		endSpan(span, err)
	}()

	return d.base.Handle(ctx, cmd)
}

func (d queryTracingDecorator[Q, R]) Execute(ctx context.Context, query Q) (result R, err error) {
	name := generateActionName(query)

	ctx, span := tracer(d.tracerProvider).Start(ctx, "query."+name,
		otelTrace.WithAttributes(attribute.String("usecase.query", name)),
	)
	defer func() {
		endSpan(span, err)
	}()

	return d.base.Execute(ctx, query)
}

func tracer(provider otelTrace.TracerProvider) otelTrace.Tracer {
	if provider == nil {
		provider = noop.NewTracerProvider()
	}

	return provider.Tracer(tracerName)
}

func endSpan(span otelTrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}
