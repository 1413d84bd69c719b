package metrics

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
)

// PrometheusClient registers counter and histogram vectors lazily on first use.
// Label names are taken from the attributes of that first call; later calls
// with a different label set are dropped.
type PrometheusClient struct {
	namespace string
	registry  *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

func NewPrometheusClient(namespace string, registry *prometheus.Registry) *PrometheusClient {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return &PrometheusClient{
		namespace:  sanitizeName(namespace),
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (c *PrometheusClient) Inc(_ context.Context, key string, value any, attributes ...attribute.KeyValue) {
	v, ok := toFloat64(value)
	if !ok || v < 0 {
		return
	}

	names, labels := labelsFrom(attributes)

	if IsObservation(key) {
		vec := c.histogram(key, names)
		if vec == nil {
			return
		}

		if observer, err := vec.GetMetricWith(labels); err == nil {
			observer.Observe(v)
		}

		return
	}

	vec := c.counter(key, names)
	if vec == nil {
		return
	}

	if counter, err := vec.GetMetricWith(labels); err == nil {
		counter.Add(v)
	}
}

func (c *PrometheusClient) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

func (c *PrometheusClient) Shutdown(_ context.Context) error {
	return nil
}

func (c *PrometheusClient) counter(key string, labelNames []string) *prometheus.CounterVec {
	c.mu.Lock()
	defer c.mu.Unlock()

	if vec, ok := c.counters[key]; ok {
		return vec
	}

	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      sanitizeName(key),
		Help:      "Total of " + key,
	}, labelNames)

	if err := c.registry.Register(vec); err != nil {
		return nil
	}

	c.counters[key] = vec

	return vec
}

func (c *PrometheusClient) histogram(key string, labelNames []string) *prometheus.HistogramVec {
	c.mu.Lock()
	defer c.mu.Unlock()

	if vec, ok := c.histograms[key]; ok {
		return vec
	}

	buckets := prometheus.DefBuckets
	if strings.HasSuffix(key, "_bytes") {
		buckets = prometheus.ExponentialBuckets(64, 4, 8)
	}

	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Name:      sanitizeName(key),
		Help:      "Distribution of " + key,
		Buckets:   buckets,
	}, labelNames)

	if err := c.registry.Register(vec); err != nil {
		return nil
	}

	c.histograms[key] = vec

	return vec
}

func labelsFrom(attributes []attribute.KeyValue) ([]string, prometheus.Labels) {
	labels := make(prometheus.Labels, len(attributes))
	for _, attr := range attributes {
		labels[sanitizeName(string(attr.Key))] = attr.Value.Emit()
	}

	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}

	slices.Sort(names)

	return names, labels
}

func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
