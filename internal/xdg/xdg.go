// Package xdg provides XDG Base Directory paths for depedit.
package xdg

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "depedit"

// homeDir resolves the user's home directory, preferring $HOME and falling
// back to os.UserHomeDir for environments where it is unset.
func homeDir() (string, error) {
	if h := os.Getenv("HOME"); h != "" {
		return h, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return h, nil
}

// ConfigDir returns the XDG config directory for depedit: $XDG_CONFIG_HOME
// if set, else $HOME/.config/depedit. The CLI looks for its depedit.yaml
// settings file here by default; the rule file default is not here.
func ConfigDir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, appName), nil
	}
	h, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(h, ".config", appName), nil
}

// DataDir returns the XDG data directory for depedit: $XDG_DATA_HOME if
// set, else $HOME/.local/share/depedit.
func DataDir() (string, error) {
	if base := os.Getenv("XDG_DATA_HOME"); base != "" {
		return filepath.Join(base, appName), nil
	}
	h, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(h, ".local", "share", appName), nil
}

// StateDir returns the XDG state directory for depedit: $XDG_STATE_HOME if
// set, else $HOME/.local/state/depedit. The default sqlite audit ledger is
// created under this directory.
func StateDir() (string, error) {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appName), nil
	}
	h, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(h, ".local", "state", appName), nil
}

// EnsureDir creates path and all missing parents with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
