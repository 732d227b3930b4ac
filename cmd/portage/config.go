// Config loading for the portage CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/portage/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeySourceDriver  = "source.driver"
	cfgKeySourceDSN     = "source.dsn"
	cfgKeySourcePrefix  = "source.table_prefix"
	cfgKeyTargetURL     = "target.base_url"
	cfgKeyTargetToken   = "target.token"
	cfgKeyTargetPage    = "target.page_size"
	cfgKeyTargetTimeout = "target.timeout"
	cfgKeyStoreID       = "store_id"
	cfgKeyMediaBaseURL  = "media_base_url"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Portage configuration

source:
  # Source driver and DSN for the legacy EAV store
  driver: sqlite
  dsn: ""
  # Optional prefix applied to every legacy table name
  # table_prefix: ""

target:
  # Base URL and API token of the target catalog
  base_url: ""
  token: ""
  # page_size: 50
  # timeout: 30s

# Preferred store view for attribute/category/media resolution
store_id: 0

# Optional absolute URL prefix for media gallery paths
# media_base_url: ""
`

// loadConfig reads config.yaml from the resolved config directory using
// Viper, layering PORTAGE_* environment variable overrides on top. It
// creates the config directory and a default config.yaml on first run.
// A missing config.yaml is not an error.
func loadConfig(configDir string) (types.Config, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return types.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return types.Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeySourceDriver, types.DriverSQLite)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("PORTAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := types.Config{
		Source: types.SourceConfig{
			Driver:      v.GetString(cfgKeySourceDriver),
			DSN:         v.GetString(cfgKeySourceDSN),
			TablePrefix: v.GetString(cfgKeySourcePrefix),
		},
		Target: types.TargetConfig{
			BaseURL:  v.GetString(cfgKeyTargetURL),
			Token:    v.GetString(cfgKeyTargetToken),
			PageSize: v.GetInt(cfgKeyTargetPage),
			Timeout:  v.GetDuration(cfgKeyTargetTimeout),
		},
		StoreID:      v.GetInt64(cfgKeyStoreID),
		MediaBaseURL: v.GetString(cfgKeyMediaBaseURL),
	}
	return cfg.Normalize(), nil
}

// ensureConfigDir creates the configuration directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0755)
}

// ensureDefaultConfigFile writes the default config.yaml on first run.
// An existing file is left untouched.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileName+"."+configFileType)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0644)
}
