package secrets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/ecommerce-client/internal/adapters/ports"
)

// Backend names a shared-secret source
type Backend string

const (
	// BackendEnv means the secret is supplied directly, no manager is built
	BackendEnv   Backend = "env"
	BackendLocal Backend = "local"
	BackendAWS   Backend = "aws"
	BackendVault Backend = "vault"
	BackendGCP   Backend = "gcp"
)

// Settings selects and configures one backend
type Settings struct {
	Backend  Backend
	CacheTTL time.Duration

	LocalPath string
	AWS       AWSConfig
	Vault     VaultConfig
	GCP       GCPConfig
}

// New builds the secret manager for settings.Backend.
// BackendEnv returns (nil, nil).
func New(ctx context.Context, settings Settings, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch settings.Backend {
	case BackendEnv, "":
		return nil, nil
	case BackendLocal:
		if settings.LocalPath == "" {
			return nil, fmt.Errorf("local secret backend requires a base path")
		}
		return NewLocalSecretManager(settings.LocalPath, logger), nil
	case BackendAWS:
		cfg := settings.AWS
		if cfg.CacheTTL == 0 {
			cfg.CacheTTL = settings.CacheTTL
		}
		return NewAWSSecretsManager(ctx, cfg, logger)
	case BackendVault:
		cfg := settings.Vault
		if cfg.CacheTTL == 0 {
			cfg.CacheTTL = settings.CacheTTL
		}
		return NewVaultSecretManager(ctx, cfg, logger)
	case BackendGCP:
		cfg := settings.GCP
		if cfg.CacheTTL == 0 {
			cfg.CacheTTL = settings.CacheTTL
		}
		return NewGCPSecretManager(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown secret backend %q", settings.Backend)
	}
}

// SharedSecret reads the gateway shared secret at path
func SharedSecret(ctx context.Context, manager ports.SecretManagerAdapter, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("shared secret path is required")
	}
	secret, err := manager.GetSecret(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to load shared secret: %w", err)
	}
	if secret.Value == "" {
		return "", fmt.Errorf("shared secret at %s is empty", path)
	}
	return secret.Value, nil
}
