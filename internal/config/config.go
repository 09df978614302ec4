package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kevin07696/ecommerce-client/internal/adapters/secrets"
	"github.com/kevin07696/ecommerce-client/pkg/ecommerce"
	"github.com/kevin07696/ecommerce-client/pkg/messages"
)

// Config holds all configuration for the binaries
type Config struct {
	Gateway GatewayConfig
	Secrets SecretsConfig
	Sandbox SandboxConfig
	Logger  LoggerConfig
}

// GatewayConfig holds the e-commerce gateway connection settings
type GatewayConfig struct {
	Environment  messages.Environment
	CardAcceptor string
	SharedSecret string // empty when it comes from a secret manager
	LiveBaseURL  string
	TestBaseURL  string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	CircuitBreaker bool
}

// SecretsConfig selects where the shared secret comes from
type SecretsConfig struct {
	Settings         secrets.Settings
	SharedSecretPath string
}

// SandboxConfig holds the simulator server configuration
type SandboxConfig struct {
	Port        int
	MetricsPort int
	// RateLimitRPS > 0 throttles each card acceptor
	RateLimitRPS   float64
	RateLimitBurst int
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Environment string // "production" selects the JSON production encoder
}

// LoadFromEnv loads the given .env files (".env" when none are named), then reads
// configuration from environment variables. A missing .env file is not an error.
func LoadFromEnv(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	env, err := messages.ParseEnvironment(getEnv("ECOMMERCE_ENVIRONMENT", string(messages.EnvironmentTest)))
	if err != nil {
		return nil, fmt.Errorf("ECOMMERCE_ENVIRONMENT: %w", err)
	}

	cacheTTL := time.Duration(getEnvAsInt("SECRET_CACHE_TTL_MINUTES", 5)) * time.Minute

	cfg := &Config{
		Gateway: GatewayConfig{
			Environment:    env,
			CardAcceptor:   getEnv("ECOMMERCE_CARD_ACCEPTOR", ""),
			SharedSecret:   getEnv("ECOMMERCE_SHARED_SECRET", ""),
			LiveBaseURL:    getEnv("ECOMMERCE_LIVE_BASE_URL", ""),
			TestBaseURL:    getEnv("ECOMMERCE_TEST_BASE_URL", ""),
			ConnectTimeout: time.Duration(getEnvAsInt("ECOMMERCE_CONNECT_TIMEOUT", 10)) * time.Second,
			ReadTimeout:    time.Duration(getEnvAsInt("ECOMMERCE_READ_TIMEOUT", 30)) * time.Second,
			RateLimitRPS:   getEnvAsFloat("ECOMMERCE_RATE_LIMIT_RPS", 0),
			RateLimitBurst: getEnvAsInt("ECOMMERCE_RATE_LIMIT_BURST", 1),
			CircuitBreaker: getEnvAsBool("ECOMMERCE_CIRCUIT_BREAKER", false),
		},
		Secrets: SecretsConfig{
			SharedSecretPath: getEnv("ECOMMERCE_SHARED_SECRET_PATH", ""),
			Settings: secrets.Settings{
				Backend:   secrets.Backend(getEnv("SECRET_BACKEND", string(secrets.BackendEnv))),
				CacheTTL:  cacheTTL,
				LocalPath: getEnv("SECRET_LOCAL_PATH", "./secrets"),
				AWS: secrets.AWSConfig{
					Region:   getEnv("AWS_REGION", "us-east-1"),
					Profile:  getEnv("AWS_PROFILE", ""),
					Endpoint: getEnv("AWS_SECRETS_ENDPOINT", ""),
				},
				Vault: secrets.VaultConfig{
					Address:    getEnv("VAULT_ADDR", "http://127.0.0.1:8200"),
					AuthMethod: getEnv("VAULT_AUTH_METHOD", "token"),
					Token:      getEnv("VAULT_TOKEN", ""),
					RoleID:     getEnv("VAULT_ROLE_ID", ""),
					SecretID:   getEnv("VAULT_SECRET_ID", ""),
					Namespace:  getEnv("VAULT_NAMESPACE", ""),
					MountPath:  getEnv("VAULT_MOUNT_PATH", "secret"),
					KVVersion:  getEnv("VAULT_KV_VERSION", "v2"),
				},
				GCP: secrets.GCPConfig{
					ProjectID: getEnv("GCP_PROJECT_ID", ""),
				},
			},
		},
		Sandbox: SandboxConfig{
			Port:           getEnvAsInt("SANDBOX_PORT", 8089),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
			RateLimitRPS:   getEnvAsFloat("SANDBOX_RATE_LIMIT_RPS", 0),
			RateLimitBurst: getEnvAsInt("SANDBOX_RATE_LIMIT_BURST", 10),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
	}

	// Validate required fields
	if cfg.Gateway.CardAcceptor == "" {
		return nil, fmt.Errorf("ECOMMERCE_CARD_ACCEPTOR is required")
	}
	switch cfg.Secrets.Settings.Backend {
	case secrets.BackendEnv:
		if cfg.Gateway.SharedSecret == "" {
			return nil, fmt.Errorf("ECOMMERCE_SHARED_SECRET is required when SECRET_BACKEND=env")
		}
	default:
		if cfg.Secrets.SharedSecretPath == "" {
			return nil, fmt.Errorf("ECOMMERCE_SHARED_SECRET_PATH is required when SECRET_BACKEND=%s", cfg.Secrets.Settings.Backend)
		}
	}

	return cfg, nil
}

// ResolveSharedSecret fetches the shared secret from the configured backend once.
// With SECRET_BACKEND=env the value from ECOMMERCE_SHARED_SECRET is kept.
func (c *Config) ResolveSharedSecret(ctx context.Context, logger *zap.Logger) error {
	if c.Secrets.Settings.Backend == secrets.BackendEnv {
		return nil
	}

	manager, err := secrets.New(ctx, c.Secrets.Settings, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize secret backend: %w", err)
	}
	secret, err := secrets.SharedSecret(ctx, manager, c.Secrets.SharedSecretPath)
	if err != nil {
		return err
	}
	c.Gateway.SharedSecret = secret
	return nil
}

// ClientConfig converts the gateway settings into an ecommerce.Config
func (c *Config) ClientConfig() ecommerce.Config {
	return ecommerce.Config{
		Environment:  c.Gateway.Environment,
		CardAcceptor: c.Gateway.CardAcceptor,
		SharedSecret: c.Gateway.SharedSecret,
		BaseURLs: ecommerce.BaseURLs{
			Live: c.Gateway.LiveBaseURL,
			Test: c.Gateway.TestBaseURL,
		},
		ConnectTimeout:    c.Gateway.ConnectTimeout,
		ReadTimeout:       c.Gateway.ReadTimeout,
		RequestsPerSecond: c.Gateway.RateLimitRPS,
		Burst:             c.Gateway.RateLimitBurst,
		CircuitBreaker:    c.Gateway.CircuitBreaker,
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
