package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type (
	// Client records a value under key. Keys ending in _seconds or _bytes are
	// observed into histograms, every other key is added to a counter.
	Client interface {
		Inc(ctx context.Context, key string, value any, attributes ...attribute.KeyValue)
		Handler() http.Handler
		Shutdown(ctx context.Context) error
	}

	// Descriptor defines metadata used when registering OTEL instruments.
	Descriptor struct {
		Description string
		Unit        string
	}
)

// IsObservation reports whether key names a distribution rather than a total.
func IsObservation(key string) bool {
	return strings.HasSuffix(key, "_seconds") || strings.HasSuffix(key, "_bytes")
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case time.Duration:
		return v.Seconds(), true
	default:
		return 0, false
	}
}

// RegisterFloat64Counter creates a Float64 counter using the provided descriptor.
func RegisterFloat64Counter(m metric.Meter, descriptor Descriptor, name string) (metric.Float64Counter, error) {
	counter, err := m.Float64Counter(
		name,
		metric.WithDescription(descriptor.Description),
		metric.WithUnit(descriptor.Unit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", name, err)
	}

	return counter, nil
}

// RegisterFloat64Histogram creates a Float64 histogram using the provided descriptor.
func RegisterFloat64Histogram(m metric.Meter, descriptor Descriptor, name string) (metric.Float64Histogram, error) {
	histogram, err := m.Float64Histogram(
		name,
		metric.WithDescription(descriptor.Description),
		metric.WithUnit(descriptor.Unit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s histogram: %w", name, err)
	}

	return histogram, nil
}

func unitFor(key string) string {
	switch {
	case strings.HasSuffix(key, "_seconds"):
		return "s"
	case strings.HasSuffix(key, "_bytes"):
		return "By"
	default:
		return "1"
	}
}
