package decorator

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	// CacheStatus represents the status of a cache operation.
	CacheStatus string

	// cacheStatusKey is the context key for cache status.
	cacheStatusKey struct{}

	cacheStatusRecord struct {
		status atomic.Value
	}

	// CacheConfig holds configuration for the caching decorator.
	CacheConfig struct {
		Enabled bool
		TTL     time.Duration
	}

	// CacheGetter retrieves items from cache.
	CacheGetter[Q Query, R Result] interface {
		Get(ctx context.Context, query Q) (R, bool, error)
	}

	// CacheSetter stores items in cache.
	CacheSetter[Q Query, R Result] interface {
		Set(ctx context.Context, query Q, result R, ttl time.Duration) error
	}

	// Cache combines getter and setter operations.
	Cache[Q Query, R Result] interface {
		CacheGetter[Q, R]
		CacheSetter[Q, R]
	}

	queryCachingDecorator[Q Query, R Result] struct {
		base   QueryHandler[Q, R]
		cache  Cache[Q, R]
		config CacheConfig
	}
)

const (
	CacheStatusHit    CacheStatus = "HIT"
	CacheStatusMiss   CacheStatus = "MISS"
	CacheStatusBypass CacheStatus = "BYPASS"
	CacheStatusError  CacheStatus = "ERROR"
)

// WithCacheStatus returns a context in which caching decorators record how
// they served a query. GetCacheStatus reads the outcome back once the query
// returns. A context that already records is returned unchanged.
func WithCacheStatus(ctx context.Context) context.Context {
	if _, ok := ctx.Value(cacheStatusKey{}).(*cacheStatusRecord); ok {
		return ctx
	}

	return context.WithValue(ctx, cacheStatusKey{}, &cacheStatusRecord{})
}

// GetCacheStatus reports the status recorded in ctx, BYPASS when no caching
// decorator ran.
func GetCacheStatus(ctx context.Context) CacheStatus {
	if record, ok := ctx.Value(cacheStatusKey{}).(*cacheStatusRecord); ok {
		if status, ok := record.status.Load().(CacheStatus); ok {
			return status
		}
	}

	return CacheStatusBypass
}

// NewQueryCachingDecorator creates a new caching decorator for queries.
func NewQueryCachingDecorator[Q Query, R Result](
	base QueryHandler[Q, R],
	cache Cache[Q, R],
	config CacheConfig,
) QueryHandler[Q, R] {
	return queryCachingDecorator[Q, R]{
		base:   base,
		cache:  cache,
		config: config,
	}
}

// Execute serves query from the cache when possible. Results are stored
// asynchronously, failures of the cache never fail the query.
func (d queryCachingDecorator[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	var zero R

	ctx = WithCacheStatus(ctx)

	if !d.config.Enabled || d.cache == nil {
		recordCacheStatus(ctx, CacheStatusBypass)

		return d.base.Execute(ctx, query)
	}

	cached, hit, err := d.cache.Get(ctx, query)
	if err == nil && hit {
		recordCacheStatus(ctx, CacheStatusHit)

		return cached, nil
	}

	status := CacheStatusMiss
	if err != nil {
		status = CacheStatusError
	}

	recordCacheStatus(ctx, status)

	result, err := d.base.Execute(ctx, query)
	if err != nil {
		return zero, err
	}

	go func(ctx context.Context) {
		_ = d.cache.Set(ctx, query, result, d.config.TTL)
	}(context.WithoutCancel(ctx))

	return result, nil
}

// recordCacheStatus annotates the span opened by the tracing decorator and
// stores status for GetCacheStatus.
func recordCacheStatus(ctx context.Context, status CacheStatus) {
	otelTrace.SpanFromContext(ctx).SetAttributes(attribute.String("cache.status", string(status)))

	if record, ok := ctx.Value(cacheStatusKey{}).(*cacheStatusRecord); ok {
		record.status.Store(status)
	}
}
