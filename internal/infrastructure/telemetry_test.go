package infrastructure_test

import (
	"context"
	"testing"
	"time"

	"github.com/architeacher/catalog/internal/config"
	"github.com/architeacher/catalog/internal/infrastructure"
	"github.com/stretchr/testify/require"
)

func TestNewTracerProvider(t *testing.T) {
	cases := []struct {
		name        string
		exporter    string
		expectedErr error
	}{
		{name: "stdout exporter", exporter: config.TraceExporterStdout},
		{name: "grpc exporter connects lazily", exporter: config.TraceExporterGRPC},
		{name: "unknown exporter", exporter: "zipkin", expectedErr: config.ErrInvalidConfig},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := config.App{ServiceName: "catalog", ServiceVersion: "test", Env: config.Environment{Name: "test"}}
			telemetry := config.Telemetry{
				ExporterType: tc.exporter,
				OTLPEndpoint: "localhost:4317",
				Traces:       config.Traces{Enabled: true, SamplerRatio: 1},
			}

			tp, shutdown, err := infrastructure.NewTracerProvider(t.Context(), app, telemetry)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, tp)

			_, span := tp.Tracer("test").Start(t.Context(), "operation")
			require.True(t, span.SpanContext().IsValid())
			span.End()

			ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
			defer cancel()

			_ = shutdown(ctx)
		})
	}
}

func TestNewNoopTracerProvider(t *testing.T) {
	t.Parallel()

	_, span := infrastructure.NewNoopTracerProvider().Tracer("test").Start(t.Context(), "operation")
	defer span.End()

	require.False(t, span.SpanContext().IsValid())
}
