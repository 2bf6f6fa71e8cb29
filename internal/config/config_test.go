package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Theomat/rusync/internal/transfer"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Check registry defaults
	if !strings.HasSuffix(cfg.Registry.Path, ".rusync.toml") {
		t.Errorf("expected registry path to end in .rusync.toml, got %q", cfg.Registry.Path)
	}
	if cfg.Registry.Backups != 3 {
		t.Errorf("expected Registry.Backups to be 3, got %d", cfg.Registry.Backups)
	}

	// Check transfer defaults
	if cfg.Transfer.Backend != string(transfer.BackendAuto) {
		t.Errorf("expected default backend %q, got %q", transfer.BackendAuto, cfg.Transfer.Backend)
	}
	if cfg.Transfer.Jobs != 1 {
		t.Errorf("expected Transfer.Jobs to be 1, got %d", cfg.Transfer.Jobs)
	}
	if cfg.Transfer.DryRun {
		t.Error("expected DryRun to be false by default")
	}

	// Check ssh defaults
	if !strings.HasSuffix(cfg.SSH.ConfigPath, filepath.Join(".ssh", "config")) {
		t.Errorf("expected ssh config under ~/.ssh, got %q", cfg.SSH.ConfigPath)
	}
	if cfg.SSH.InsecureIgnoreHostKey {
		t.Error("expected InsecureIgnoreHostKey to be false by default")
	}

	// Check output defaults
	if cfg.Output.Color != "auto" {
		t.Errorf("expected Output.Color to be 'auto', got %q", cfg.Output.Color)
	}
	if cfg.Output.Progress != "auto" {
		t.Errorf("expected Output.Progress to be 'auto', got %q", cfg.Output.Progress)
	}

	// Check log defaults
	if cfg.Log.Level != "warn" {
		t.Errorf("expected Log.Level to be 'warn', got %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("expected Log.Format to be 'text', got %q", cfg.Log.Format)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg := Default()
	cfg.Registry.Path = "/var/lib/rusync/registry.toml"
	cfg.Registry.Backups = 0
	cfg.Transfer.Backend = string(transfer.BackendSCP)
	cfg.Transfer.Jobs = 4
	cfg.Log.Level = "debug"

	if err := cfg.SaveToPath(configPath); err != nil {
		t.Fatalf("SaveToPath failed: %v", err)
	}

	loaded, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if loaded.Registry.Path != "/var/lib/rusync/registry.toml" {
		t.Errorf("expected registry path %q, got %q", "/var/lib/rusync/registry.toml", loaded.Registry.Path)
	}
	if loaded.Registry.Backups != 0 {
		t.Errorf("expected Backups 0, got %d", loaded.Registry.Backups)
	}
	if loaded.Transfer.Backend != string(transfer.BackendSCP) {
		t.Errorf("expected backend %q, got %q", transfer.BackendSCP, loaded.Transfer.Backend)
	}
	if loaded.Transfer.Jobs != 4 {
		t.Errorf("expected Jobs 4, got %d", loaded.Transfer.Jobs)
	}
	if loaded.Log.Level != "debug" {
		t.Errorf("expected log level 'debug', got %q", loaded.Log.Level)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		check    func(*Config) bool
	}{
		{
			name:     "registry path",
			envKey:   "RUSYNC_REGISTRY_PATH",
			envValue: "/custom/registry.toml",
			check:    func(c *Config) bool { return c.Registry.Path == "/custom/registry.toml" },
		},
		{
			name:     "registry backups",
			envKey:   "RUSYNC_REGISTRY_BACKUPS",
			envValue: "0",
			check:    func(c *Config) bool { return c.Registry.Backups == 0 },
		},
		{
			name:     "transfer backend",
			envKey:   "RUSYNC_TRANSFER_BACKEND",
			envValue: "ssh",
			check:    func(c *Config) bool { return c.Transfer.Backend == "ssh" },
		},
		{
			name:     "transfer jobs",
			envKey:   "RUSYNC_TRANSFER_JOBS",
			envValue: "8",
			check:    func(c *Config) bool { return c.Transfer.Jobs == 8 },
		},
		{
			name:     "transfer jobs must be positive",
			envKey:   "RUSYNC_TRANSFER_JOBS",
			envValue: "0",
			check:    func(c *Config) bool { return c.Transfer.Jobs == 1 },
		},
		{
			name:     "ssh config path",
			envKey:   "RUSYNC_SSH_CONFIG",
			envValue: "/custom/ssh_config",
			check:    func(c *Config) bool { return c.SSH.ConfigPath == "/custom/ssh_config" },
		},
		{
			name:     "ssh known hosts",
			envKey:   "RUSYNC_SSH_KNOWN_HOSTS",
			envValue: "/custom/known_hosts",
			check:    func(c *Config) bool { return c.SSH.KnownHosts == "/custom/known_hosts" },
		},
		{
			name:     "ssh password",
			envKey:   "RUSYNC_SSH_PASSWORD",
			envValue: "hunter2",
			check:    func(c *Config) bool { return c.SSH.Password == "hunter2" },
		},
		{
			name:     "ssh insecure",
			envKey:   "RUSYNC_SSH_INSECURE",
			envValue: "yes",
			check:    func(c *Config) bool { return c.SSH.InsecureIgnoreHostKey },
		},
		{
			name:     "output color",
			envKey:   "RUSYNC_OUTPUT_COLOR",
			envValue: "never",
			check:    func(c *Config) bool { return c.Output.Color == "never" },
		},
		{
			name:     "output progress",
			envKey:   "RUSYNC_OUTPUT_PROGRESS",
			envValue: "always",
			check:    func(c *Config) bool { return c.Output.Progress == "always" },
		},
		{
			name:     "log level",
			envKey:   "RUSYNC_LOG_LEVEL",
			envValue: "debug",
			check:    func(c *Config) bool { return c.Log.Level == "debug" },
		},
		{
			name:     "log format",
			envKey:   "RUSYNC_LOG_FORMAT",
			envValue: "json",
			check:    func(c *Config) bool { return c.Log.Format == "json" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envValue)

			cfg := Default()
			cfg.applyEnvironment()

			if !tt.check(cfg) {
				t.Errorf("environment override for %s did not apply correctly", tt.envKey)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"True", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"off", false},
		{"", false},
		{"invalid", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseBool(tt.input)
			if result != tt.expected {
				t.Errorf("parseBool(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetBackend(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		expected transfer.Backend
	}{
		{"valid auto", "auto", transfer.BackendAuto},
		{"valid local", "local", transfer.BackendLocal},
		{"valid scp", "scp", transfer.BackendSCP},
		{"valid ssh", "ssh", transfer.BackendSSH},
		{"invalid returns default", "rsync", transfer.BackendAuto},
		{"empty returns default", "", transfer.BackendAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Transfer.Backend = tt.backend
			result := cfg.GetBackend()
			if result != tt.expected {
				t.Errorf("GetBackend() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"mixed case", "DEBUG", slog.LevelDebug},
		{"invalid falls back to warn", "loud", slog.LevelWarn},
		{"empty falls back to warn", "", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Log.Level = tt.level
			if got := cfg.GetLogLevel(); got != tt.expected {
				t.Errorf("GetLogLevel() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	// Point HOME at an empty directory so no real config is picked up.
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not fail for non-existent file: %v", err)
	}

	if cfg.Transfer.Backend != string(transfer.BackendAuto) {
		t.Errorf("expected default backend, got %q", cfg.Transfer.Backend)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// #nosec G306 - test file permissions are acceptable
	if err := os.WriteFile(configPath, []byte("invalid: yaml: content:"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if _, err := LoadFromPath(configPath); err == nil {
		t.Error("LoadFromPath should fail for invalid YAML")
	}
}

func TestPartialConfigMerge(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write a partial config (only transfer settings)
	partialConfig := `
transfer:
  backend: "scp"
  jobs: 6
`
	// #nosec G306 - test file permissions are acceptable
	if err := os.WriteFile(configPath, []byte(partialConfig), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	// Partial overrides should apply
	if cfg.Transfer.Backend != "scp" {
		t.Errorf("expected backend 'scp', got %q", cfg.Transfer.Backend)
	}
	if cfg.Transfer.Jobs != 6 {
		t.Errorf("expected Jobs 6, got %d", cfg.Transfer.Jobs)
	}

	// Defaults should still be present for non-specified values
	if cfg.Registry.Backups != 3 {
		t.Errorf("expected Registry.Backups to retain default value 3, got %d", cfg.Registry.Backups)
	}
	if cfg.Output.Color != "auto" {
		t.Errorf("expected Output.Color to retain default 'auto', got %q", cfg.Output.Color)
	}
}

func TestExists(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if Exists() {
		t.Error("Exists() should return false for non-existent config")
	}

	cfg := Default()
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !Exists() {
		t.Error("Exists() should return true after saving config")
	}
}

func TestRegistryPathExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	cfg.Registry.Path = "~/.rusync.toml"

	want := filepath.Join(home, ".rusync.toml")
	if got := cfg.RegistryPath(); got != want {
		t.Errorf("RegistryPath() = %q, expected %q", got, want)
	}
}

func TestSSHOptions(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	cfg.SSH.ConfigPath = "~/.ssh/config"
	cfg.SSH.KnownHosts = "~/.ssh/known_hosts"
	cfg.SSH.Password = "hunter2"
	cfg.SSH.InsecureIgnoreHostKey = true

	opts := cfg.SSHOptions()
	if want := filepath.Join(home, ".ssh", "config"); opts.ConfigPath != want {
		t.Errorf("SSHOptions().ConfigPath = %q, expected %q", opts.ConfigPath, want)
	}
	if want := filepath.Join(home, ".ssh", "known_hosts"); opts.KnownHostsPath != want {
		t.Errorf("SSHOptions().KnownHostsPath = %q, expected %q", opts.KnownHostsPath, want)
	}
	if opts.Password != "hunter2" {
		t.Errorf("SSHOptions().Password = %q, expected %q", opts.Password, "hunter2")
	}
	if !opts.InsecureIgnoreHostKey {
		t.Error("SSHOptions().InsecureIgnoreHostKey should be true")
	}
}
