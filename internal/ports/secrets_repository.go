package ports

import (
	"context"

	"github.com/hashicorp/vault/api"
)

// SecretsRepository reads secrets from the secrets storage backend.
type SecretsRepository interface {
	GetSecrets(ctx context.Context, path string) (*api.Secret, error)
}
