// Package paths resolves the landing configuration and data directories.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user platform directories.
const appName = "landing"

// CWD-relative directory names.
const (
	DefaultConfigDirName = ".landing"
	DefaultDataDirName   = ".landing-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "LANDING_CONFIG_DIR"
	EnvDataDir   = "LANDING_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/landing (fallback ~/.config/landing)
// macOS:   ~/Library/Application Support/landing
// Windows: %APPDATA%/landing
func DefaultConfigDir() (string, error) {
	return platformPath("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/landing (fallback ~/.local/share/landing)
// macOS and Windows: same as DefaultConfigDir.
func DefaultDataDir() (string, error) {
	return platformPath("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// platformPath applies the XDG rules on Linux and os.UserConfigDir elsewhere.
func platformPath(xdgEnv, homeFallback string) (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv(xdgEnv); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, homeFallback, appName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > LANDING_CONFIG_DIR > $(CWD)/.landing when it
// exists > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, DefaultConfigDirName)
		if info, err := os.Stat(local); err == nil && info.IsDir() {
			return local, nil
		}
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > LANDING_DATA_DIR > $(CWD)/.landing-db.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}
