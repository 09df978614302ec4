package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kevin07696/ecommerce-client/internal/adapters/ports"
)

// localSecretManager reads secrets from files under basePath.
// A file holds either the plain secret or {"value": "...", "tags": {...}}.
// For development only.
type localSecretManager struct {
	basePath string
	logger   *zap.Logger
}

func NewLocalSecretManager(basePath string, logger *zap.Logger) ports.SecretManagerAdapter {
	return &localSecretManager{basePath: basePath, logger: logger}
}

func (m *localSecretManager) GetSecret(ctx context.Context, secretPath string) (*ports.Secret, error) {
	filePath := filepath.Join(m.basePath, filepath.Clean("/"+secretPath))

	m.logger.Debug("Reading secret from filesystem", zap.String("path", secretPath))

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("secret not found: %s", secretPath)
		}
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	var doc struct {
		Value     string            `json:"value"`
		Tags      map[string]string `json:"tags"`
		CreatedAt string            `json:"created_at"`
	}
	if err := json.Unmarshal(data, &doc); err == nil && doc.Value != "" {
		return &ports.Secret{
			Value:     doc.Value,
			Version:   "latest",
			Metadata:  doc.Tags,
			CreatedAt: doc.CreatedAt,
		}, nil
	}

	return &ports.Secret{
		Value:   strings.TrimRight(string(data), "\r\n"),
		Version: "latest",
	}, nil
}

// GetSecretVersion only knows "latest" for files
func (m *localSecretManager) GetSecretVersion(ctx context.Context, secretPath, version string) (*ports.Secret, error) {
	if version != "latest" && version != "" {
		return nil, fmt.Errorf("local secret manager only supports the latest version, got %q", version)
	}
	return m.GetSecret(ctx, secretPath)
}
