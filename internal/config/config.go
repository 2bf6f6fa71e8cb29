// Package config provides configuration management for rusync.
// It supports YAML configuration files, environment variables, and sensible defaults.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Theomat/rusync/internal/transfer"
	"github.com/Theomat/rusync/internal/util"
)

// Config represents the complete rusync configuration.
type Config struct {
	// Registry configures where sync profiles live
	Registry RegistryConfig `yaml:"registry"`

	// Transfer configures how entries reach their destinations
	Transfer TransferConfig `yaml:"transfer"`

	// SSH configures the built-in SSH backend
	SSH SSHConfig `yaml:"ssh"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output"`

	// Log configures diagnostic logging
	Log LogConfig `yaml:"log"`
}

// RegistryConfig holds registry storage settings.
type RegistryConfig struct {
	// Path is the registry file location; ~ expands to the home directory
	Path string `yaml:"path"`
	// Backups is how many rotated copies of the registry to keep on save;
	// 0 disables backups
	Backups int `yaml:"backups"`
}

// TransferConfig holds default transfer behavior.
type TransferConfig struct {
	// Backend selects the transfer mechanism (auto, local, scp, ssh)
	Backend string `yaml:"backend"`
	// Jobs is how many entries sync concurrently; 1 keeps runs sequential
	Jobs int `yaml:"jobs"`
	// DryRun reports what would transfer without touching destinations
	DryRun bool `yaml:"dry_run"`
}

// SSHConfig holds settings for the built-in SSH backend.
type SSHConfig struct {
	// ConfigPath is the OpenSSH client configuration to honor for host aliases
	ConfigPath string `yaml:"config_path"`
	// KnownHosts is the known_hosts file used to verify host keys
	KnownHosts string `yaml:"known_hosts"`
	// InsecureIgnoreHostKey skips host key verification entirely
	InsecureIgnoreHostKey bool `yaml:"insecure_ignore_host_key"`
	// Password enables password authentication when set; prefer the
	// RUSYNC_SSH_PASSWORD environment variable over storing it here
	Password string `yaml:"password,omitempty"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never)
	Color string `yaml:"color"`
	// Progress controls the progress bar (auto, always, never)
	Progress string `yaml:"progress"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	// Level is the minimum level printed to stderr (debug, info, warn, error)
	Level string `yaml:"level"`
	// Format selects text or json log lines
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			Path:    util.RegistryPath(),
			Backups: 3,
		},
		Transfer: TransferConfig{
			Backend: string(transfer.BackendAuto),
			Jobs:    1,
			DryRun:  false,
		},
		SSH: SSHConfig{
			ConfigPath: util.SSHConfigPath(),
			KnownHosts: util.KnownHostsPath(),
		},
		Output: OutputConfig{
			Color:    "auto",
			Progress: "auto",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// FilePath returns the path to the config file.
func FilePath() string {
	return util.ConfigFilePath()
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	configPath := FilePath()
	// #nosec G304 - configPath is constructed from trusted config directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file, use defaults with environment overrides
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}

	// Parse YAML over defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	cfg.applyEnvironment()

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern RUSYNC_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	// Registry settings
	if v := os.Getenv("RUSYNC_REGISTRY_PATH"); v != "" {
		c.Registry.Path = v
	}
	if v := os.Getenv("RUSYNC_REGISTRY_BACKUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Registry.Backups = n
		}
	}

	// Transfer settings
	if v := os.Getenv("RUSYNC_TRANSFER_BACKEND"); v != "" {
		c.Transfer.Backend = v
	}
	if v := os.Getenv("RUSYNC_TRANSFER_JOBS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Transfer.Jobs = n
		}
	}

	// SSH settings
	if v := os.Getenv("RUSYNC_SSH_CONFIG"); v != "" {
		c.SSH.ConfigPath = v
	}
	if v := os.Getenv("RUSYNC_SSH_KNOWN_HOSTS"); v != "" {
		c.SSH.KnownHosts = v
	}
	if v := os.Getenv("RUSYNC_SSH_PASSWORD"); v != "" {
		c.SSH.Password = v
	}
	if v := os.Getenv("RUSYNC_SSH_INSECURE"); v != "" {
		c.SSH.InsecureIgnoreHostKey = parseBool(v)
	}

	// Output settings
	if v := os.Getenv("RUSYNC_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("RUSYNC_OUTPUT_PROGRESS"); v != "" {
		c.Output.Progress = v
	}

	// Log settings
	if v := os.Getenv("RUSYNC_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RUSYNC_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// RegistryPath returns the registry file location with ~ expanded.
func (c *Config) RegistryPath() string {
	return util.ExpandHome(c.Registry.Path)
}

// GetBackend returns the transfer backend from config, validating it.
func (c *Config) GetBackend() transfer.Backend {
	backend := transfer.Backend(c.Transfer.Backend)
	if backend.IsValid() {
		return backend
	}
	return transfer.BackendAuto
}

// GetLogLevel maps the configured level name to a slog level.
func (c *Config) GetLogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// LogJSON reports whether log lines should be JSON.
func (c *Config) LogJSON() bool {
	return strings.EqualFold(strings.TrimSpace(c.Log.Format), "json")
}

// SSHOptions returns the transfer-layer options for the built-in SSH backend.
func (c *Config) SSHOptions() transfer.SSHOptions {
	return transfer.SSHOptions{
		ConfigPath:            util.ExpandHome(c.SSH.ConfigPath),
		KnownHostsPath:        util.ExpandHome(c.SSH.KnownHosts),
		InsecureIgnoreHostKey: c.SSH.InsecureIgnoreHostKey,
		Password:              c.SSH.Password,
	}
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
