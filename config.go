package scanner

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds scanner configuration.
type Config struct {
	SubscriptionID    string `toml:"subscription_id"`
	StorageAccount    string `toml:"storage_account"`
	TableName         string `toml:"table_name"`
	EndpointURL       string `toml:"endpoint_url"`        // Custom ARM endpoint for simulator mode
	TablesEndpointURL string `toml:"tables_endpoint_url"` // Custom Tables endpoint for simulator mode
}

// LoadConfig reads an optional TOML config file and applies environment
// variable overrides on top of it. An empty path skips the file entirely.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// ConfigFromEnv loads configuration from environment variables only.
func ConfigFromEnv() Config {
	var cfg Config
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	c.SubscriptionID = envOrDefault("AZURE_SUBSCRIPTION_ID", c.SubscriptionID)
	c.StorageAccount = envOrDefault("STORAGE_ACCOUNT_NAME", c.StorageAccount)
	c.TableName = envOrDefault("STORAGE_TABLE_NAME", c.TableName)
	c.EndpointURL = envOrDefault("AZURE_ENDPOINT_URL", c.EndpointURL)
	c.TablesEndpointURL = envOrDefault("TABLES_ENDPOINT_URL", c.TablesEndpointURL)
}

// Validate checks required configuration.
func (c Config) Validate() error {
	if c.SubscriptionID == "" {
		return fmt.Errorf("AZURE_SUBSCRIPTION_ID is required")
	}
	if c.StorageAccount == "" && c.TablesEndpointURL == "" {
		return fmt.Errorf("STORAGE_ACCOUNT_NAME is required")
	}
	if c.TableName == "" {
		return fmt.Errorf("STORAGE_TABLE_NAME is required")
	}
	return nil
}

// TablesServiceURL returns the Table service endpoint for the configured
// storage account, honoring the simulator override.
func (c Config) TablesServiceURL() string {
	if c.TablesEndpointURL != "" {
		return c.TablesEndpointURL
	}
	if c.EndpointURL != "" {
		return c.EndpointURL
	}
	return fmt.Sprintf("https://%s.table.core.windows.net", c.StorageAccount)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
