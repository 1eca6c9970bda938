package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AZURE_SUBSCRIPTION_ID", "sub-1")
	t.Setenv("STORAGE_ACCOUNT_NAME", "acct1")
	t.Setenv("STORAGE_TABLE_NAME", "topology")

	cfg := ConfigFromEnv()
	assert.Equal(t, "sub-1", cfg.SubscriptionID)
	assert.Equal(t, "acct1", cfg.StorageAccount)
	assert.Equal(t, "topology", cfg.TableName)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanner.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
subscription_id = "sub-file"
storage_account = "acctfile"
table_name = "topology"
`), 0o644))

	t.Setenv("AZURE_SUBSCRIPTION_ID", "sub-env")
	t.Setenv("STORAGE_ACCOUNT_NAME", "")
	t.Setenv("STORAGE_TABLE_NAME", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sub-env", cfg.SubscriptionID, "env overrides file")
	assert.Equal(t, "acctfile", cfg.StorageAccount)
	assert.Equal(t, "topology", cfg.TableName)
}

func TestLoadConfigBadFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing subscription",
			cfg:     Config{StorageAccount: "acct", TableName: "t"},
			wantErr: "AZURE_SUBSCRIPTION_ID",
		},
		{
			name:    "missing storage account",
			cfg:     Config{SubscriptionID: "sub", TableName: "t"},
			wantErr: "STORAGE_ACCOUNT_NAME",
		},
		{
			name:    "missing table",
			cfg:     Config{SubscriptionID: "sub", StorageAccount: "acct"},
			wantErr: "STORAGE_TABLE_NAME",
		},
		{
			name: "endpoint override needs no storage account",
			cfg:  Config{SubscriptionID: "sub", TableName: "t", TablesEndpointURL: "http://localhost:7777"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTablesServiceURL(t *testing.T) {
	cfg := Config{StorageAccount: "acct1"}
	assert.Equal(t, "https://acct1.table.core.windows.net", cfg.TablesServiceURL())

	cfg.EndpointURL = "http://localhost:7777"
	assert.Equal(t, "http://localhost:7777", cfg.TablesServiceURL())

	cfg.TablesEndpointURL = "http://localhost:8888"
	assert.Equal(t, "http://localhost:8888", cfg.TablesServiceURL())
}
