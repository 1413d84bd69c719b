package decorator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/architeacher/catalog/pkg/decorator"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type (
	testQuery struct {
		ID string
	}

	testResult struct {
		Value string
	}

	storedEntry struct {
		query  testQuery
		result testResult
		ctxErr error
	}

	// fakeCache keeps results in memory and reports every Set on stored.
	// When gate is set, Set waits for it to close before inspecting ctx.
	fakeCache struct {
		mu     sync.Mutex
		data   map[string]testResult
		getErr error
		gate   chan struct{}
		stored chan storedEntry
	}

	mockQueryHandler struct {
		mu         sync.Mutex
		callCount  int
		seenStatus decorator.CacheStatus
		result     testResult
		err        error
	}
)

func newFakeCache() *fakeCache {
	return &fakeCache{
		data:   make(map[string]testResult),
		stored: make(chan storedEntry, 1),
	}
}

func (c *fakeCache) Get(_ context.Context, query testQuery) (testResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.getErr != nil {
		return testResult{}, false, c.getErr
	}

	result, ok := c.data[query.ID]

	return result, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, query testQuery, result testResult, _ time.Duration) error {
	if c.gate != nil {
		<-c.gate
	}

	c.mu.Lock()
	c.data[query.ID] = result
	c.mu.Unlock()

	c.stored <- storedEntry{query: query, result: result, ctxErr: ctx.Err()}

	return nil
}

func (h *mockQueryHandler) Execute(ctx context.Context, _ testQuery) (testResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.callCount++
	h.seenStatus = decorator.GetCacheStatus(ctx)

	return h.result, h.err
}

func (h *mockQueryHandler) calls() (int, decorator.CacheStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.callCount, h.seenStatus
}

func spanAttribute(t *testing.T, span sdktrace.ReadOnlySpan, key string) string {
	t.Helper()

	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			return attr.Value.AsString()
		}
	}

	return ""
}

func TestQueryCachingDecorator_Execute(t *testing.T) {
	t.Parallel()

	errLookup := errors.New("cache unreachable")
	errHandler := errors.New("storage down")

	cases := []struct {
		name           string
		cached         map[string]testResult
		getErr         error
		withoutCache   bool
		config         decorator.CacheConfig
		handlerErr     error
		expectedResult testResult
		expectedErr    error
		expectedCalls  int
		expectedStatus decorator.CacheStatus
		expectStored   bool
	}{
		{
			name:           "hit skips the handler",
			cached:         map[string]testResult{"green": {Value: "cached"}},
			config:         decorator.CacheConfig{Enabled: true, TTL: time.Minute},
			expectedResult: testResult{Value: "cached"},
			expectedStatus: decorator.CacheStatusHit,
		},
		{
			name:           "miss runs the handler and stores the result",
			config:         decorator.CacheConfig{Enabled: true, TTL: time.Minute},
			expectedResult: testResult{Value: "fresh"},
			expectedCalls:  1,
			expectedStatus: decorator.CacheStatusMiss,
			expectStored:   true,
		},
		{
			name:           "lookup failure falls back to the handler",
			getErr:         errLookup,
			config:         decorator.CacheConfig{Enabled: true, TTL: time.Minute},
			expectedResult: testResult{Value: "fresh"},
			expectedCalls:  1,
			expectedStatus: decorator.CacheStatusError,
			expectStored:   true,
		},
		{
			name:           "disabled config bypasses the cache",
			cached:         map[string]testResult{"green": {Value: "cached"}},
			config:         decorator.CacheConfig{Enabled: false},
			expectedResult: testResult{Value: "fresh"},
			expectedCalls:  1,
			expectedStatus: decorator.CacheStatusBypass,
		},
		{
			name:           "missing cache bypasses",
			withoutCache:   true,
			config:         decorator.CacheConfig{Enabled: true, TTL: time.Minute},
			expectedResult: testResult{Value: "fresh"},
			expectedCalls:  1,
			expectedStatus: decorator.CacheStatusBypass,
		},
		{
			name:           "handler error is returned and not stored",
			config:         decorator.CacheConfig{Enabled: true, TTL: time.Minute},
			handlerErr:     errHandler,
			expectedErr:    errHandler,
			expectedCalls:  1,
			expectedStatus: decorator.CacheStatusMiss,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cache := newFakeCache()
			cache.getErr = tc.getErr
			for id, result := range tc.cached {
				cache.data[id] = result
			}

			var store decorator.Cache[testQuery, testResult] = cache
			if tc.withoutCache {
				store = nil
			}

			base := &mockQueryHandler{result: testResult{Value: "fresh"}, err: tc.handlerErr}
			handler := decorator.NewQueryCachingDecorator[testQuery, testResult](base, store, tc.config)

			provider, recorder := newTracerProvider()
			spanCtx, span := provider.Tracer("test").Start(context.Background(), "query")
			ctx := decorator.WithCacheStatus(spanCtx)

			result, err := handler.Execute(ctx, testQuery{ID: "green"})
			span.End()

			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.expectedResult, result)
			}

			calls, seen := base.calls()
			require.Equal(t, tc.expectedCalls, calls)
			if tc.expectedCalls > 0 {
				require.Equal(t, tc.expectedStatus, seen)
			}

			require.Equal(t, tc.expectedStatus, decorator.GetCacheStatus(ctx))

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			require.Equal(t, string(tc.expectedStatus), spanAttribute(t, spans[0], "cache.status"))

			if tc.expectStored {
				select {
				case entry := <-cache.stored:
					require.Equal(t, testQuery{ID: "green"}, entry.query)
					require.Equal(t, tc.expectedResult, entry.result)
				case <-time.After(time.Second):
					t.Fatal("result was not stored")
				}

				return
			}

			select {
			case entry := <-cache.stored:
				t.Fatalf("unexpected store of %+v", entry)
			case <-time.After(50 * time.Millisecond):
			}
		})
	}
}

func TestQueryCachingDecorator_StoresAfterCallerCancels(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	cache.gate = make(chan struct{})

	handler := decorator.NewQueryCachingDecorator[testQuery, testResult](
		&mockQueryHandler{result: testResult{Value: "fresh"}},
		cache,
		decorator.CacheConfig{Enabled: true, TTL: time.Minute},
	)

	ctx, cancel := context.WithCancel(context.Background())

	result, err := handler.Execute(ctx, testQuery{ID: "large"})
	require.NoError(t, err)
	require.Equal(t, "fresh", result.Value)

	cancel()
	close(cache.gate)

	select {
	case entry := <-cache.stored:
		require.NoError(t, entry.ctxErr)
		require.Equal(t, testQuery{ID: "large"}, entry.query)
	case <-time.After(time.Second):
		t.Fatal("result was not stored")
	}
}

func TestGetCacheStatus(t *testing.T) {
	t.Parallel()

	t.Run("defaults to bypass", func(t *testing.T) {
		t.Parallel()

		require.Equal(t, decorator.CacheStatusBypass, decorator.GetCacheStatus(context.Background()))
		require.Equal(t, decorator.CacheStatusBypass, decorator.GetCacheStatus(decorator.WithCacheStatus(context.Background())))
	})

	t.Run("recording context is reused", func(t *testing.T) {
		t.Parallel()

		ctx := decorator.WithCacheStatus(context.Background())

		require.Equal(t, ctx, decorator.WithCacheStatus(ctx))
	})

	t.Run("nested decorators report the innermost lookup", func(t *testing.T) {
		t.Parallel()

		cache := newFakeCache()
		cache.data["red"] = testResult{Value: "cached"}

		inner := decorator.NewQueryCachingDecorator[testQuery, testResult](
			&mockQueryHandler{result: testResult{Value: "fresh"}},
			cache,
			decorator.CacheConfig{Enabled: true},
		)
		outer := decorator.NewQueryCachingDecorator[testQuery, testResult](inner, nil, decorator.CacheConfig{})

		ctx := decorator.WithCacheStatus(context.Background())

		result, err := outer.Execute(ctx, testQuery{ID: "red"})
		require.NoError(t, err)
		require.Equal(t, "cached", result.Value)
		require.Equal(t, decorator.CacheStatusHit, decorator.GetCacheStatus(ctx))
	})
}
