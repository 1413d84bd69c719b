package decorator

import (
	"context"
	"time"

	"github.com/architeacher/catalog/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"

	commandsTotal          = "commands_total"
	commandDurationSeconds = "command_duration_seconds"
	queriesTotal           = "queries_total"
	queryDurationSeconds   = "query_duration_seconds"
)

type (
	commandMetricsDecorator[C Command, R any] struct {
		base   CommandHandler[C, R]
		client metrics.Client
	}

	queryMetricsDecorator[Q Query, R Result] struct {
		base   QueryHandler[Q, R]
		client metrics.Client
	}
)

func (d commandMetricsDecorator[C, R]) Handle(ctx context.Context, cmd C) (result R, err error) {
	start := time.Now()

	defer func() {
		if d.client == nil {
			return
		}

		attrs := []attribute.KeyValue{
			attribute.String("command", generateActionName(cmd)),
			attribute.String("outcome", outcome(err)),
		}

		d.client.Inc(ctx, commandDurationSeconds, time.Since(start).Seconds(), attrs...)
		d.client.Inc(ctx, commandsTotal, 1, attrs...)
	}()

	return d.base.Handle(ctx, cmd)
}

func (d queryMetricsDecorator[Q, R]) Execute(ctx context.Context, query Q) (result R, err error) {
	start := time.Now()

	defer func() {
		if d.client == nil {
			return
		}

		attrs := []attribute.KeyValue{
			attribute.String("query", generateActionName(query)),
			attribute.String("outcome", outcome(err)),
		}

		d.client.Inc(ctx, queryDurationSeconds, time.Since(start).Seconds(), attrs...)
		d.client.Inc(ctx, queriesTotal, 1, attrs...)
	}()

	return d.base.Execute(ctx, query)
}

func outcome(err error) string {
	if err != nil {
		return outcomeFailure
	}

	return outcomeSuccess
}
