package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/architeacher/catalog/internal/config"
	"github.com/architeacher/catalog/internal/infrastructure"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnString renders the connection URL, credentials are escaped.
func ConnString(cfg config.Database) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.FormatUint(uint64(cfg.Port), 10)),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": []string{cfg.SSLMode}}.Encode(),
	}

	return u.String()
}

// NewPool opens a pool and pings the server, retrying with the configured
// backoff until it answers or the elapsed time budget is spent.
func NewPool(ctx context.Context, cfg config.Database, retry config.Backoff, log logger.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	connect := func() (*pgxpool.Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("creating connection pool: %w", err))
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("pinging database: %w", err)
		}

		return pool, nil
	}

	return backoff.Retry(ctx, connect,
		backoff.WithBackOff(infrastructure.NewBackOff(retry)),
		backoff.WithMaxElapsedTime(retry.MaxElapsedTime),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().
				Err(err).
				Str("host", cfg.Host).
				Dur("retry_in", next).
				Msg("database not reachable yet")
		}),
	)
}
