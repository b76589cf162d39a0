package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigFileUsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/config-home")
	t.Setenv("HOME", "/tmp/home")

	got := ConfigFile()
	want := filepath.Join("/tmp/config-home", "hostbridge", "config.toml")
	if got != want {
		t.Fatalf("ConfigFile() = %q, want %q", got, want)
	}
	if got, want := PlanFile(), filepath.Join("/tmp/config-home", "hostbridge", "plan.toml"); got != want {
		t.Fatalf("PlanFile() = %q, want %q", got, want)
	}
}

func TestConfigDirFallsBackToHomeConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/tmp/home")

	got := ConfigDir()
	want := filepath.Join("/tmp/home", ".config", "hostbridge")
	if got != want {
		t.Fatalf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestResponseCacheDirUsesXDGCacheHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache-home")

	got := ResponseCacheDir()
	want := filepath.Join("/tmp/cache-home", "hostbridge", "responses")
	if got != want {
		t.Fatalf("ResponseCacheDir() = %q, want %q", got, want)
	}
}

func TestEnsureDirCreatesPrivateDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if got := info.Mode().Perm(); got != 0700 {
		t.Fatalf("dir mode = %o, want 700", got)
	}
}
