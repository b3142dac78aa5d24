// Config loading for the shelf CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/shelf/internal/paths"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyRemoteURL     = "remote_url"
	cfgKeyRemoteTimeout = "remote_timeout"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Shelf CLI configuration

# Backend selection: sqlite, document, files, or remote
backend: sqlite

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# Remote server, required when backend is remote
# remote_url: ws://localhost:8040/rpc
# remote_timeout: 10s
`

// loadShelfConfig resolves the config directory, reads config.yaml, and
// builds the backend configuration. The config directory and a default
// config.yaml are created on first run; a missing config.yaml is not an
// error.
func loadShelfConfig() (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(configDirFlag)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolving config dir: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return types.Config{}, fmt.Errorf("creating config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return types.Config{}, err
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return types.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	dataDir, err := paths.ResolveDataDir(dataDirFlag, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolving data dir: %w", err)
	}

	cfg := types.Config{
		Backend:       v.GetString(cfgKeyBackend),
		DataDir:       dataDir,
		RemoteURL:     v.GetString(cfgKeyRemoteURL),
		RemoteTimeout: v.GetDuration(cfgKeyRemoteTimeout),
	}
	if cfg.RemoteTimeout == 0 {
		cfg.RemoteTimeout = 10 * time.Second
	}
	return cfg, cfg.Validate()
}

// ensureDefaultConfigFile creates a default config.yaml if the file does
// not exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
