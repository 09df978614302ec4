package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"

	"github.com/kevin07696/ecommerce-client/internal/adapters/ports"
)

// AWSConfig configures the AWS Secrets Manager backend
type AWSConfig struct {
	Region string
	// Profile selects a shared-config profile for local development
	Profile string
	// Endpoint overrides the service endpoint (LocalStack)
	Endpoint string
	CacheTTL time.Duration
}

type awsSecretsManager struct {
	client *secretsmanager.Client
	logger *zap.Logger
	cache  *secretCache
}

// NewAWSSecretsManager uses the default credential chain unless a profile is set
func NewAWSSecretsManager(ctx context.Context, cfg AWSConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*secretsmanager.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	logger.Info("AWS Secrets Manager backend initialized",
		zap.String("region", cfg.Region),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	return &awsSecretsManager{
		client: secretsmanager.NewFromConfig(awsConfig, clientOpts...),
		logger: logger,
		cache:  newSecretCache(cfg.CacheTTL),
	}, nil
}

func (a *awsSecretsManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := a.cache.get(path); cached != nil {
		return cached, nil
	}

	secret, err := a.fetch(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(path)})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s: %w", path, err)
	}
	a.cache.set(path, secret)
	return secret, nil
}

func (a *awsSecretsManager) GetSecretVersion(ctx context.Context, path, version string) (*ports.Secret, error) {
	secret, err := a.fetch(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:  aws.String(path),
		VersionId: aws.String(version),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s version %s: %w", path, version, err)
	}
	return secret, nil
}

func (a *awsSecretsManager) fetch(ctx context.Context, input *secretsmanager.GetSecretValueInput) (*ports.Secret, error) {
	start := time.Now()
	result, err := a.client.GetSecretValue(ctx, input)
	if err != nil {
		a.logger.Error("Failed to retrieve secret from AWS",
			zap.String("path", aws.ToString(input.SecretId)),
			zap.Error(err),
		)
		return nil, err
	}

	a.logger.Info("Secret retrieved from AWS",
		zap.String("path", aws.ToString(input.SecretId)),
		zap.Duration("elapsed", time.Since(start)),
	)

	secret := &ports.Secret{
		Value:    aws.ToString(result.SecretString),
		Version:  aws.ToString(result.VersionId),
		Metadata: map[string]string{},
	}
	if result.CreatedDate != nil {
		secret.CreatedAt = result.CreatedDate.Format(time.RFC3339)
	}
	if result.ARN != nil {
		secret.Metadata["arn"] = *result.ARN
	}
	return secret, nil
}
