package paths

import (
	"os"
	"path/filepath"
)

const appName = "hostbridge"

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	h, _ := os.UserHomeDir()
	return h
}

func xdgDir(envVar, fallbackSuffix string) string {
	if v := os.Getenv(envVar); v != "" {
		return filepath.Join(v, appName)
	}
	return filepath.Join(homeDir(), fallbackSuffix, appName)
}

// ConfigDir returns the hostbridge config directory ($XDG_CONFIG_HOME/hostbridge).
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// CacheDir returns the hostbridge cache directory ($XDG_CACHE_HOME/hostbridge).
func CacheDir() string {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// ConfigFile returns the path to config.toml.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// PlanFile returns the default reference-host plan path.
func PlanFile() string {
	return filepath.Join(ConfigDir(), "plan.toml")
}

// ResponseCacheDir holds cached read-only command responses.
func ResponseCacheDir() string {
	return filepath.Join(CacheDir(), "responses")
}

// EnsureDir creates a directory and parents if needed.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0700)
}
