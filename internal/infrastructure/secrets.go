package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/architeacher/catalog/internal/config"
	"github.com/architeacher/catalog/internal/ports"
	"github.com/architeacher/catalog/pkg/logger"
	"github.com/cenkalti/backoff/v5"
)

var ErrSecretNotFound = errors.New("secret not found")

// LoadDatabaseSecrets reads the database credentials from the KV v2 engine
// and applies them to cfg. Keys are named after their environment variables.
func LoadDatabaseSecrets(
	ctx context.Context,
	repo ports.SecretsRepository,
	cfg *config.ServiceConfig,
	log logger.Logger,
) error {
	storage := cfg.SecretsStorage
	secretPath := path.Join(storage.MountPath, "data", storage.SecretPath)

	ctx, cancel := context.WithTimeout(ctx, storage.Timeout)
	defer cancel()

	operation := func() (map[string]any, error) {
		secret, err := repo.GetSecrets(ctx, secretPath)
		if err != nil {
			return nil, err
		}

		if secret == nil || secret.Data == nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrSecretNotFound, secretPath))
		}

		data, ok := secret.Data["data"].(map[string]any)
		if !ok {
			return nil, backoff.Permanent(fmt.Errorf("invalid secret format at %s, missing data key", secretPath))
		}

		return data, nil
	}

	data, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(NewBackOff(cfg.Backoff)),
		backoff.WithMaxTries(storage.MaxRetries+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Dur("retry_in", next).Str("path", secretPath).Msg("reading secrets failed, retrying")
		}),
	)
	if err != nil {
		return fmt.Errorf("loading secrets from %s: %w", secretPath, err)
	}

	applied := applyDatabaseSecrets(cfg, data)

	log.Info().Strs("keys", applied).Str("path", secretPath).Msg("secrets applied")

	return nil
}

func applyDatabaseSecrets(cfg *config.ServiceConfig, data map[string]any) []string {
	applied := make([]string, 0, len(data))

	for key, value := range data {
		str, ok := value.(string)
		if !ok || str == "" {
			continue
		}

		switch key {
		case "POSTGRES_USERNAME":
			cfg.Database.Username = str
		case "POSTGRES_PASSWORD":
			cfg.Database.Password = str
		case "CACHE_PASSWORD":
			cfg.Cache.Password = str
		default:
			continue
		}

		applied = append(applied, key)
	}

	return applied
}
