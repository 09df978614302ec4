package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value (the gateway shared secret)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretManagerAdapter defines the port for retrieving the gateway shared secret
// Supports multiple backends: local filesystem, AWS Secrets Manager, GCP Secret Manager, HashiCorp Vault
// The client only ever reads the secret; provisioning and rotation happen outside it.
type SecretManagerAdapter interface {
	// GetSecret retrieves a secret by its path/name
	// Path format depends on implementation:
	//   - Local: path relative to the base directory
	//   - AWS: "ecommerce/{card_acceptor}/shared-secret" or full ARN
	//   - GCP: secret name within the configured project
	//   - Vault: "ecommerce/{card_acceptor}" under the KV mount
	GetSecret(ctx context.Context, path string) (*Secret, error)

	// GetSecretVersion retrieves a specific version of a secret
	// Useful while a shared secret is being rotated on the gateway side
	GetSecretVersion(ctx context.Context, path string, version string) (*Secret, error)
}
