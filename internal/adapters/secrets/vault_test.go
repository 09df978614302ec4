package secrets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeVault serves a KV v2 secret at secret/data/ecommerce/TEST123
func fakeVault(t *testing.T, reads *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/secret/data/ecommerce/TEST123", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(reads, 1)
		if r.Header.Get("X-Vault-Token") != "root-token" {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]any{"errors": []string{"permission denied"}})
			return
		}
		value, version := "current-secret", 3
		if r.URL.Query().Get("version") == "2" {
			value, version = "previous-secret", 2
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"data": map[string]any{"value": value, "acceptor": "TEST123"},
				"metadata": map[string]any{
					"version":      version,
					"created_time": "2026-01-01T00:00:00Z",
				},
			},
		})
	})
	mux.HandleFunc("/v1/auth/approle/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"auth": map[string]any{"client_token": "root-token"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestVaultSecretManager_GetSecret(t *testing.T) {
	var reads int32
	srv := fakeVault(t, &reads)

	cfg := DefaultVaultConfig(srv.URL)
	cfg.Token = "root-token"
	m, err := NewVaultSecretManager(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	secret, err := m.GetSecret(context.Background(), "ecommerce/TEST123")
	require.NoError(t, err)
	assert.Equal(t, "current-secret", secret.Value)
	assert.Equal(t, "3", secret.Version)
	assert.Equal(t, "TEST123", secret.Metadata["acceptor"])

	// second read comes from cache
	_, err = m.GetSecret(context.Background(), "ecommerce/TEST123")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&reads))
}

func TestVaultSecretManager_GetSecretVersion(t *testing.T) {
	var reads int32
	srv := fakeVault(t, &reads)

	cfg := DefaultVaultConfig(srv.URL)
	cfg.Token = "root-token"
	m, err := NewVaultSecretManager(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	secret, err := m.GetSecretVersion(context.Background(), "ecommerce/TEST123", "2")
	require.NoError(t, err)
	assert.Equal(t, "previous-secret", secret.Value)
	assert.Equal(t, "2", secret.Version)
}

func TestVaultSecretManager_AppRole(t *testing.T) {
	var reads int32
	srv := fakeVault(t, &reads)

	cfg := DefaultVaultConfig(srv.URL)
	cfg.AuthMethod = "approle"
	cfg.RoleID = "role"
	cfg.SecretID = "secret"
	cfg.CacheTTL = 0
	m, err := NewVaultSecretManager(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	secret, err := m.GetSecret(context.Background(), "ecommerce/TEST123")
	require.NoError(t, err)
	assert.Equal(t, "current-secret", secret.Value)
}

func TestVaultSecretManager_AuthErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  VaultConfig
	}{
		{name: "token missing", cfg: VaultConfig{Address: "http://127.0.0.1:1", AuthMethod: "token"}},
		{name: "approle missing ids", cfg: VaultConfig{Address: "http://127.0.0.1:1", AuthMethod: "approle"}},
		{name: "unknown method", cfg: VaultConfig{Address: "http://127.0.0.1:1", AuthMethod: "kerberos"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVaultSecretManager(context.Background(), tt.cfg, zap.NewNop())
			assert.Error(t, err)
		})
	}
}

func TestVaultSecretManager_VersionRequiresKV2(t *testing.T) {
	cfg := DefaultVaultConfig("http://127.0.0.1:1")
	cfg.Token = "t"
	cfg.KVVersion = "v1"
	cfg.CacheTTL = time.Minute
	m, err := NewVaultSecretManager(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = m.GetSecretVersion(context.Background(), "x", "1")
	assert.ErrorContains(t, err, "KV v2")
}
