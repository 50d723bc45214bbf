package secrets

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"character-dialog-service/backend/pkg/logger"

	vault "github.com/hashicorp/vault/api"
)

// VaultManager resolves secrets from HashiCorp Vault with an environment
// variable fallback, so a missing Vault deployment never blocks startup.
type VaultManager struct {
	client      *vault.Client
	secretsPath string
	cache       map[string]string
	mu          sync.RWMutex
	log         *logger.Logger
	fallback    EnvManager
}

// NewManager returns a Vault-backed manager when VAULT_ADDR is set, the
// plain environment manager otherwise.
func NewManager(log *logger.Logger) Manager {
	addr := os.Getenv("VAULT_ADDR")
	if addr == "" {
		return EnvManager{}
	}

	manager, err := NewVaultManager(log)
	if err != nil {
		log.Warn("vault unavailable, falling back to environment secrets", "error", err)
		return EnvManager{}
	}
	return manager
}

// NewVaultManager creates a new Vault manager instance
func NewVaultManager(log *logger.Logger) (*VaultManager, error) {
	addr := os.Getenv("VAULT_ADDR")
	token := os.Getenv("VAULT_TOKEN")
	if addr == "" {
		return nil, ErrVaultDisabled
	}
	if token == "" {
		return nil, fmt.Errorf("VAULT_TOKEN is required when VAULT_ADDR is set")
	}

	cfg := vault.DefaultConfig()
	cfg.Address = addr
	cfg.Timeout = 10 * time.Second

	client, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(token)

	secretsPath := os.Getenv("VAULT_SECRETS_PATH")
	if secretsPath == "" {
		secretsPath = "secret/data/character-dialog-service"
	}

	return &VaultManager{
		client:      client,
		secretsPath: secretsPath,
		cache:       make(map[string]string),
		log:         log,
	}, nil
}

// GetSecret retrieves a secret by key, preferring Vault and falling back to
// the environment.
func (m *VaultManager) GetSecret(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	if value, ok := m.cache[key]; ok {
		m.mu.RUnlock()
		return value, nil
	}
	m.mu.RUnlock()

	secret, err := m.client.Logical().ReadWithContext(ctx, m.secretsPath)
	if err != nil || secret == nil {
		return m.fallback.GetSecret(ctx, key)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		// KV v1 layout
		data = secret.Data
	}

	value, ok := data[key].(string)
	if !ok || value == "" {
		return m.fallback.GetSecret(ctx, key)
	}

	m.mu.Lock()
	m.cache[key] = value
	m.mu.Unlock()

	return value, nil
}

// GetSecretWithDefault retrieves a secret with a default value if not found
func (m *VaultManager) GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	if value, err := m.GetSecret(ctx, key); err == nil {
		return value
	}
	return defaultValue
}
