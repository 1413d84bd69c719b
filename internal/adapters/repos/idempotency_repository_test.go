package repos_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/architeacher/catalog/internal/adapters/repos"
	"github.com/architeacher/catalog/internal/config"
	"github.com/architeacher/catalog/internal/infrastructure"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/stretchr/testify/require"
)

func newTestIdempotencyRepository(t *testing.T) (*repos.IdempotencyRepository, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := infrastructure.NewKeyDBClient(config.Cache{Address: server.Addr()}, logger.NewTestLogger())
	t.Cleanup(func() { _ = client.Close() })

	return repos.NewIdempotencyRepository(client), server
}

func TestIdempotencyRepository_GetSet(t *testing.T) {
	t.Parallel()

	repo, server := newTestIdempotencyRepository(t)
	ctx := t.Context()

	missing, err := repo.Get(ctx, "catalog:idempotency:missing")
	require.NoError(t, err)
	require.Nil(t, missing)

	response := &ports.CachedResponse{
		StatusCode:  http.StatusCreated,
		Fingerprint: "abc123",
		Headers:     map[string]string{"Content-Type": "application/json"},
		Body:        []byte(`{"name":"Apple"}`),
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, repo.Set(ctx, "catalog:idempotency:key", response, time.Hour))
	require.Equal(t, time.Hour, server.TTL("catalog:idempotency:key"))

	cached, err := repo.Get(ctx, "catalog:idempotency:key")
	require.NoError(t, err)
	require.Equal(t, response, cached)
}

func TestIdempotencyRepository_Lock(t *testing.T) {
	t.Parallel()

	repo, server := newTestIdempotencyRepository(t)
	ctx := t.Context()

	acquired, err := repo.SetLock(ctx, "catalog:idempotency:key", 30*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)
	require.True(t, server.Exists("catalog:idempotency:key:lock"))

	acquired, err = repo.SetLock(ctx, "catalog:idempotency:key", 30*time.Second)
	require.NoError(t, err)
	require.False(t, acquired)

	require.NoError(t, repo.ReleaseLock(ctx, "catalog:idempotency:key"))
	require.False(t, server.Exists("catalog:idempotency:key:lock"))

	acquired, err = repo.SetLock(ctx, "catalog:idempotency:key", 30*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)
}

func TestIdempotencyRepository_CorruptedEntry(t *testing.T) {
	t.Parallel()

	repo, server := newTestIdempotencyRepository(t)
	require.NoError(t, server.Set("catalog:idempotency:bad", "not json"))

	_, err := repo.Get(t.Context(), "catalog:idempotency:bad")
	require.Error(t, err)
}
