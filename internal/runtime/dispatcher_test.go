package runtime

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/architeacher/catalog/internal/config"
	"github.com/stretchr/testify/require"
)

const seedCatalogYAML = `products:
  - {name: Apple, color: green, size: small, price: 10}
  - {name: Tree, color: green, size: large, price: 20}
  - {name: House, color: blue, size: large, price: 100}
  - {name: Car, color: red, size: large, price: 7000}
`

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates service context with default values", func(t *testing.T) {
		t.Parallel()

		serviceCtx := New()

		require.NotNil(t, serviceCtx)
		require.NotNil(t, serviceCtx.shutdownChannel)
		require.Nil(t, serviceCtx.deps)
		require.Nil(t, serviceCtx.serverReady)
		require.Empty(t, serviceCtx.Addr())
	})

	t.Run("creates service context with options", func(t *testing.T) {
		t.Parallel()

		ch := make(chan os.Signal, 1)
		serviceCtx := New(
			WithServiceTermination(ch),
			WithWaitingForServer(),
			WithConfigOverrides(func(cfg *config.ServiceConfig) {}),
		)

		require.NotNil(t, serviceCtx)
		require.Equal(t, ch, serviceCtx.shutdownChannel)
		require.NotNil(t, serviceCtx.serverReady)
		require.Len(t, serviceCtx.configure, 1)
	})
}

func TestServiceCtx_Run(t *testing.T) {
	seedFile := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte(seedCatalogYAML), 0o600))

	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("STORAGE_DRIVER", config.StorageDriverMemory)
	t.Setenv("STORAGE_SEED_FILE", seedFile)

	signals := make(chan os.Signal, 1)
	serviceCtx := New(
		WithServiceTermination(signals),
		WithWaitingForServer(),
		WithConfigOverrides(func(cfg *config.ServiceConfig) {
			cfg.HTTPServer.Host = "127.0.0.1"
			cfg.HTTPServer.Port = 0
			cfg.HTTPServer.ShutdownTimeout = 5 * time.Second
		}),
	)

	done := make(chan error, 1)
	go func() {
		done <- serviceCtx.Run()
	}()

	serviceCtx.WaitForServer()
	require.NotEmpty(t, serviceCtx.Addr())

	resp, err := http.Get("http://" + serviceCtx.Addr() + "/v1/products?color=green")
	require.NoError(t, err)

	var body struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NoError(t, resp.Body.Close())

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Data, 2)
	require.Equal(t, "Apple", body.Data[0].Name)
	require.Equal(t, "Tree", body.Data[1].Name)

	signals <- syscall.SIGTERM

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestServiceCtx_Run_InvalidConfig(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "cassandra")

	serviceCtx := New(WithWaitingForServer())

	err := serviceCtx.Run()
	require.ErrorIs(t, err, config.ErrInvalidConfig)

	serviceCtx.WaitForServer()
}
