package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(raw), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if got, want := cfg.Host.URL(), "ws://localhost:8999/"; got != want {
		t.Fatalf("Host.URL() = %q, want %q", got, want)
	}
	if got := cfg.Channel.Reconnect(); got != 5*time.Second {
		t.Fatalf("Channel.Reconnect() = %v, want 5s", got)
	}
	if got := cfg.Channel.Timeout(); got != 30*time.Second {
		t.Fatalf("Channel.Timeout() = %v, want 30s", got)
	}
	if cfg.Workflow.NetOffset != 1200 || cfg.Workflow.CenterlineOffset != 2000 {
		t.Fatalf("Workflow offsets = %v/%v, want 1200/2000", cfg.Workflow.NetOffset, cfg.Workflow.CenterlineOffset)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate(defaults) error = %v", err)
	}
}

func TestLoadFromOverridesOnlyGivenKeys(t *testing.T) {
	path := writeConfig(t, `
[host]
port = 9100

[channel]
fail_pending_on_disconnect = true
command_timeouts = { Create_Dimension = "45s" }
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Host.Port != 9100 || cfg.Host.Address != "localhost" {
		t.Fatalf("Host = %+v, want port override with default address", cfg.Host)
	}
	if !cfg.Channel.FailPendingOnDisconnect {
		t.Fatal("FailPendingOnDisconnect = false, want true")
	}
	if got := cfg.Channel.Timeouts()["create_dimension"]; got != 45*time.Second {
		t.Fatalf("Timeouts()[create_dimension] = %v, want 45s", got)
	}
	if got := cfg.Channel.ConnectTimeout; got != "10s" {
		t.Fatalf("ConnectTimeout = %q, want default 10s", got)
	}
}

func TestLoadFromExpandsEnvValuesAfterParsing(t *testing.T) {
	t.Setenv("HOSTBRIDGE_TEST_HOST", "10.0.0.7")
	t.Setenv("HOSTBRIDGE_TEST_PLAN", "/srv/plans/floor2.toml")

	path := writeConfig(t, `
[host]
address = "${HOSTBRIDGE_TEST_HOST}"
plan = "${HOSTBRIDGE_TEST_PLAN}"
path = "${HOSTBRIDGE_TEST_UNSET}"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Host.Address != "10.0.0.7" {
		t.Fatalf("Host.Address = %q, want 10.0.0.7", cfg.Host.Address)
	}
	if cfg.Host.Plan != "/srv/plans/floor2.toml" {
		t.Fatalf("Host.Plan = %q", cfg.Host.Plan)
	}
	if cfg.Host.Path != "${HOSTBRIDGE_TEST_UNSET}" {
		t.Fatalf("Host.Path = %q, want unresolved placeholder kept", cfg.Host.Path)
	}
}

func TestLoadFromRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, "[host\nport = ")
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom() error = nil, want parse error")
	}
}

func TestHostURLNormalizesPath(t *testing.T) {
	h := HostConfig{Address: "127.0.0.1", Port: 8999, Path: "bridge"}
	if got, want := h.URL(), "ws://127.0.0.1:8999/bridge"; got != want {
		t.Fatalf("URL() = %q, want %q", got, want)
	}
}

func TestCacheable(t *testing.T) {
	c := Default().Cache
	if c.Cacheable("get_all_levels") {
		t.Fatal("Cacheable() = true with cache disabled")
	}
	c.Enabled = true
	if !c.Cacheable("GET_ALL_LEVELS") {
		t.Fatal("Cacheable(GET_ALL_LEVELS) = false, want case-insensitive match")
	}
	if c.Cacheable("create_dimension") {
		t.Fatal("Cacheable(create_dimension) = true, want false")
	}
}
