package util

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// RegistryPath returns the default sync registry file
func RegistryPath() string {
	return filepath.Join(HomeDir(), ".rusync.toml")
}

// ConfigDir returns the rusync configuration directory
func ConfigDir() string {
	return filepath.Join(HomeDir(), ".config", "rusync")
}

// ConfigFilePath returns the rusync configuration file
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// SSHConfigPath returns the user's OpenSSH client configuration file
func SSHConfigPath() string {
	return filepath.Join(HomeDir(), ".ssh", "config")
}

// KnownHostsPath returns the user's OpenSSH known hosts file
func KnownHostsPath() string {
	return filepath.Join(HomeDir(), ".ssh", "known_hosts")
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
// Paths without the prefix are returned unchanged.
func ExpandHome(path string) string {
	if path == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(HomeDir(), path[2:])
	}
	return path
}
