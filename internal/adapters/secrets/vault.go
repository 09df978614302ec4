package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/kevin07696/ecommerce-client/internal/adapters/ports"
)

// VaultConfig configures the HashiCorp Vault backend
type VaultConfig struct {
	Address string
	// AuthMethod is "token" or "approle"
	AuthMethod string
	Token      string
	RoleID     string
	SecretID   string
	Namespace  string
	// MountPath of the KV engine, "secret" by default
	MountPath string
	// KVVersion is "v1" or "v2"
	KVVersion string
	CacheTTL  time.Duration
}

func DefaultVaultConfig(address string) VaultConfig {
	return VaultConfig{
		Address:    address,
		AuthMethod: "token",
		MountPath:  "secret",
		KVVersion:  "v2",
		CacheTTL:   5 * time.Minute,
	}
}

type vaultSecretManager struct {
	client *vault.Client
	cfg    VaultConfig
	logger *zap.Logger
	cache  *secretCache
}

func NewVaultSecretManager(ctx context.Context, cfg VaultConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}
	if err := authenticateVault(ctx, client, cfg); err != nil {
		return nil, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	logger.Info("Vault backend initialized",
		zap.String("address", cfg.Address),
		zap.String("auth_method", cfg.AuthMethod),
		zap.String("kv_version", cfg.KVVersion),
	)

	return &vaultSecretManager{
		client: client,
		cfg:    cfg,
		logger: logger,
		cache:  newSecretCache(cfg.CacheTTL),
	}, nil
}

func authenticateVault(ctx context.Context, client *vault.Client, cfg VaultConfig) error {
	switch cfg.AuthMethod {
	case "token", "":
		if cfg.Token == "" {
			return fmt.Errorf("token is required for token auth")
		}
		client.SetToken(cfg.Token)
		return nil

	case "approle":
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for AppRole auth")
		}
		resp, err := client.Logical().WriteWithContext(ctx, "auth/approle/login", map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		})
		if err != nil {
			return fmt.Errorf("AppRole login failed: %w", err)
		}
		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("AppRole login returned no auth info")
		}
		client.SetToken(resp.Auth.ClientToken)
		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
}

func (v *vaultSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := v.cache.get(path); cached != nil {
		return cached, nil
	}

	secret, err := v.read(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	v.cache.set(path, secret)
	return secret, nil
}

// GetSecretVersion requires KV v2
func (v *vaultSecretManager) GetSecretVersion(ctx context.Context, path, version string) (*ports.Secret, error) {
	if v.cfg.KVVersion != "v2" {
		return nil, fmt.Errorf("GetSecretVersion requires KV v2")
	}
	return v.read(ctx, path, map[string][]string{"version": {version}})
}

func (v *vaultSecretManager) read(ctx context.Context, path string, query map[string][]string) (*ports.Secret, error) {
	fullPath := fmt.Sprintf("%s/%s", v.cfg.MountPath, path)
	if v.cfg.KVVersion == "v2" {
		fullPath = fmt.Sprintf("%s/data/%s", v.cfg.MountPath, path)
	}

	start := time.Now()
	raw, err := v.client.Logical().ReadWithDataWithContext(ctx, fullPath, query)
	if err != nil {
		v.logger.Error("Failed to read secret from Vault", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("failed to read secret from Vault: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("secret not found: %s", path)
	}

	v.logger.Info("Secret retrieved from Vault",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(start)),
	)

	data := raw.Data
	secret := &ports.Secret{Version: "1", Metadata: map[string]string{}}
	if v.cfg.KVVersion == "v2" {
		inner, ok := raw.Data["data"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid secret format from Vault")
		}
		data = inner
		if md, ok := raw.Data["metadata"].(map[string]interface{}); ok {
			if n, ok := md["version"].(json.Number); ok {
				secret.Version = n.String()
			}
			if ct, ok := md["created_time"].(string); ok {
				secret.CreatedAt = ct
			}
		}
	}

	// The secret is stored under "value"; other string keys become metadata
	for k, val := range data {
		s, ok := val.(string)
		if !ok {
			continue
		}
		if k == "value" {
			secret.Value = s
		} else {
			secret.Metadata[k] = s
		}
	}
	if secret.Value == "" {
		return nil, fmt.Errorf("secret %s has no value", path)
	}
	return secret, nil
}
