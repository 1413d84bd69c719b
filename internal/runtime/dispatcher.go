package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/architeacher/catalog/internal/config"
)

const fallbackShutdownTimeout = 30 * time.Second

type ServiceCtx struct {
	deps            *dependencies
	configure       []func(*config.ServiceConfig)
	dependencyOpts  []DependencyOption
	shutdownChannel chan os.Signal
	serverCtx       context.Context
	serverStopFunc  context.CancelFunc
	serverReady     chan struct{}
	readyOnce       sync.Once
	serverErrors    chan error
	httpAddr        string
}

func New(opts ...ServiceOption) *ServiceCtx {
	ctx := &ServiceCtx{
		shutdownChannel: make(chan os.Signal, 1),
		serverErrors:    make(chan error, 2),
	}

	for _, opt := range opts {
		opt(ctx)
	}

	return ctx
}

// Run wires the service, serves until a termination signal arrives or a
// server fails, then shuts everything down.
func (c *ServiceCtx) Run() error {
	defer c.markReady()

	if err := c.build(); err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}

	if err := c.startService(); err != nil {
		c.shutdown()

		return err
	}

	c.shutdownHook()
	defer signal.Stop(c.shutdownChannel)

	var runErr error

	// Waits for one of the following shutdown conditions to happen.
	select {
	case <-c.serverCtx.Done():
	case runErr = <-c.serverErrors:
	case sig := <-c.shutdownChannel:
		c.deps.infra.logger.Info().Str("signal", sig.String()).Msg("termination signal received")
	}

	c.shutdown()

	return runErr
}

func (c *ServiceCtx) build() error {
	c.serverCtx, c.serverStopFunc = context.WithCancel(context.Background())

	var err error

	c.deps, err = initializeDependencies(c.serverCtx, c.configure, c.dependencyOpts...)
	if err != nil {
		c.serverStopFunc()

		return fmt.Errorf("initializing dependencies: %w", err)
	}

	return nil
}

func (c *ServiceCtx) startService() error {
	listener, err := c.serve("http server", c.deps.infra.httpServer)
	if err != nil {
		return err
	}

	c.httpAddr = listener.Addr().String()

	if c.deps.infra.adminHTTPServer != nil {
		if _, err := c.serve("admin http server", c.deps.infra.adminHTTPServer); err != nil {
			return err
		}
	}

	c.markReady()

	return nil
}

// markReady releases WaitForServer, also when the start failed.
func (c *ServiceCtx) markReady() {
	if c.serverReady == nil {
		return
	}

	c.readyOnce.Do(func() { close(c.serverReady) })
}

// serve binds server.Addr before returning so that a port already in use
// fails the start instead of a goroutine.
func (c *ServiceCtx) serve(name string, server *http.Server) (net.Listener, error) {
	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}

	c.deps.infra.logger.Info().
		Str("address", listener.Addr().String()).
		Msgf("starting the %s", name)

	c.deps.onShutdown(name, server.Shutdown)

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.serverErrors <- fmt.Errorf("%s: %w", name, err)
		}
	}()

	return listener, nil
}

func (c *ServiceCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

func (c *ServiceCtx) shutdown() {
	c.deps.infra.logger.Info().Msg("shutting down service...")

	// Cancel context that underlying processes would start cleanup.
	c.serverStopFunc()

	timeout := c.deps.config.HTTPServer.ShutdownTimeout
	if timeout <= 0 {
		timeout = fallbackShutdownTimeout
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c.deps.infra.logger.Info().Msg("cleaning up resources...")
	c.deps.cleanup(shutdownCtx)

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		c.deps.infra.logger.Error().Msg("graceful shutdown timed out")
	}

	c.deps.infra.logger.Info().Msg("service shutdown complete")
}

// WaitForServer blocks until the http server is listening.
// If you want to be notified when the server is running,
// make sure you instantiate your server with WithWaitingForServer.
//
// Example:
//
//	srv := runtime.New(runtime.WithWaitingForServer())
//	go func() {
//		_ = srv.Run()
//	}()
//
//	srv.WaitForServer()
func (c *ServiceCtx) WaitForServer() {
	if c.serverReady != nil {
		<-c.serverReady
	}
}

// Addr is the address the http server listens on, empty before it started.
func (c *ServiceCtx) Addr() string {
	return c.httpAddr
}
