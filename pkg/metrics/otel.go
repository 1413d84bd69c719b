package metrics

import (
	"context"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OtelClient forwards values to OpenTelemetry instruments created from meter.
// Export is left to whichever MeterProvider produced the meter.
type OtelClient struct {
	meter metric.Meter

	mu         sync.Mutex
	counters   map[string]metric.Float64Counter
	histograms map[string]metric.Float64Histogram
}

func NewOtelClient(meter metric.Meter) *OtelClient {
	return &OtelClient{
		meter:      meter,
		counters:   make(map[string]metric.Float64Counter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

func (c *OtelClient) Inc(ctx context.Context, key string, value any, attributes ...attribute.KeyValue) {
	v, ok := toFloat64(value)
	if !ok || v < 0 {
		return
	}

	opt := metric.WithAttributes(attributes...)

	if IsObservation(key) {
		if histogram := c.histogram(key); histogram != nil {
			histogram.Record(ctx, v, opt)
		}

		return
	}

	if counter := c.counter(key); counter != nil {
		counter.Add(ctx, v, opt)
	}
}

func (c *OtelClient) Handler() http.Handler {
	return http.NotFoundHandler()
}

func (c *OtelClient) Shutdown(_ context.Context) error {
	return nil
}

func (c *OtelClient) counter(key string) metric.Float64Counter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, ok := c.counters[key]; ok {
		return counter
	}

	counter, err := RegisterFloat64Counter(c.meter, Descriptor{Description: "Total of " + key, Unit: unitFor(key)}, key)
	if err != nil {
		return nil
	}

	c.counters[key] = counter

	return counter
}

func (c *OtelClient) histogram(key string) metric.Float64Histogram {
	c.mu.Lock()
	defer c.mu.Unlock()

	if histogram, ok := c.histograms[key]; ok {
		return histogram
	}

	histogram, err := RegisterFloat64Histogram(c.meter, Descriptor{Description: "Distribution of " + key, Unit: unitFor(key)}, key)
	if err != nil {
		return nil
	}

	c.histograms[key] = histogram

	return histogram
}
