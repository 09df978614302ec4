package secrets

import (
	"context"
	"fmt"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"go.uber.org/zap"

	"github.com/kevin07696/ecommerce-client/internal/adapters/ports"
)

// GCPConfig configures the GCP Secret Manager backend.
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS or workload identity.
type GCPConfig struct {
	ProjectID string
	CacheTTL  time.Duration
}

type gcpSecretManager struct {
	client    *secretmanager.Client
	projectID string
	logger    *zap.Logger
	cache     *secretCache
}

func NewGCPSecretManager(ctx context.Context, cfg GCPConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("GCP project ID is required")
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Secret Manager client: %w", err)
	}

	logger.Info("GCP Secret Manager backend initialized", zap.String("project_id", cfg.ProjectID))

	return &gcpSecretManager{
		client:    client,
		projectID: cfg.ProjectID,
		logger:    logger,
		cache:     newSecretCache(cfg.CacheTTL),
	}, nil
}

func (g *gcpSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := g.cache.get(path); cached != nil {
		return cached, nil
	}

	secret, err := g.access(ctx, path, "latest")
	if err != nil {
		return nil, err
	}
	g.cache.set(path, secret)
	return secret, nil
}

func (g *gcpSecretManager) GetSecretVersion(ctx context.Context, path, version string) (*ports.Secret, error) {
	return g.access(ctx, path, version)
}

func (g *gcpSecretManager) access(ctx context.Context, path, version string) (*ports.Secret, error) {
	name := fmt.Sprintf("projects/%s/secrets/%s/versions/%s", g.projectID, path, version)

	result, err := g.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		g.logger.Error("Failed to access GCP secret", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("failed to access GCP secret %s: %w", path, err)
	}

	g.logger.Info("Secret fetched from GCP", zap.String("path", path), zap.String("version", version))

	return &ports.Secret{
		Value:   string(result.GetPayload().GetData()),
		Version: versionFromName(result.GetName()),
		Metadata: map[string]string{
			"gcp_project_id": g.projectID,
			"gcp_secret":     path,
		},
	}, nil
}

// versionFromName extracts "3" from projects/p/secrets/s/versions/3
func versionFromName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
