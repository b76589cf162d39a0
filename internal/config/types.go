package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config is the top-level hostbridge configuration.
type Config struct {
	Host     HostConfig     `toml:"host"`
	Channel  ChannelConfig  `toml:"channel"`
	Cache    CacheConfig    `toml:"cache"`
	Workflow WorkflowConfig `toml:"workflow"`
	Log      LogConfig      `toml:"log"`
}

// HostConfig locates the design host's WebSocket endpoint. The reference
// host listens on the same address.
type HostConfig struct {
	Address string `toml:"address"`
	Port    int    `toml:"port"`
	Path    string `toml:"path"`
	// Plan is the TOML document the reference host serves.
	Plan string `toml:"plan"`
	// Headers are sent with the WebSocket handshake, e.g. an
	// Authorization token for a host behind a proxy.
	Headers map[string]string `toml:"headers"`
}

// ChannelConfig tunes the command correlation channel. Durations are Go
// duration strings.
type ChannelConfig struct {
	ReconnectInterval       string            `toml:"reconnect_interval"`
	ConnectTimeout          string            `toml:"connect_timeout"`
	CommandTimeout          string            `toml:"command_timeout"`
	CommandTimeouts         map[string]string `toml:"command_timeouts"`
	FailPendingOnDisconnect bool              `toml:"fail_pending_on_disconnect"`
}

// CacheConfig controls caching of read-only command responses.
type CacheConfig struct {
	Enabled  bool     `toml:"enabled"`
	TTL      string   `toml:"ttl"`
	Commands []string `toml:"commands"`
}

// WorkflowConfig holds defaults for the corridor dimension workflow.
type WorkflowConfig struct {
	SearchRadius     float64 `toml:"search_radius"`
	NetOffset        float64 `toml:"net_offset"`
	CenterlineOffset float64 `toml:"centerline_offset"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Host: HostConfig{
			Address: "localhost",
			Port:    8999,
			Path:    "/",
		},
		Channel: ChannelConfig{
			ReconnectInterval: "5s",
			ConnectTimeout:    "10s",
			CommandTimeout:    "30s",
			CommandTimeouts:   map[string]string{},
		},
		Cache: CacheConfig{
			TTL:      "30s",
			Commands: []string{"get_all_levels", "get_all_views", "get_project_info"},
		},
		Workflow: WorkflowConfig{
			SearchRadius:     3000,
			NetOffset:        1200,
			CenterlineOffset: 2000,
		},
		Log: LogConfig{Level: "info"},
	}
}

// ListenAddr is the host:port the reference host binds.
func (h HostConfig) ListenAddr() string {
	return net.JoinHostPort(h.Address, strconv.Itoa(h.Port))
}

// URL is the WebSocket URL the bridge dials.
func (h HostConfig) URL() string {
	p := h.Path
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "ws", Host: h.ListenAddr(), Path: p}
	return u.String()
}

// Reconnect returns the parsed reconnect interval.
func (c ChannelConfig) Reconnect() time.Duration {
	return durationOr(c.ReconnectInterval, 5*time.Second)
}

// Connect returns the parsed connect (handshake) timeout.
func (c ChannelConfig) Connect() time.Duration {
	return durationOr(c.ConnectTimeout, 10*time.Second)
}

// Timeout returns the parsed default command timeout.
func (c ChannelConfig) Timeout() time.Duration {
	return durationOr(c.CommandTimeout, 30*time.Second)
}

// Timeouts returns the parsed per-command timeout overrides. Invalid entries
// are skipped; Validate reports them.
func (c ChannelConfig) Timeouts() map[string]time.Duration {
	out := make(map[string]time.Duration, len(c.CommandTimeouts))
	for name, raw := range c.CommandTimeouts {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			out[strings.ToLower(name)] = d
		}
	}
	return out
}

// TTLDuration returns the parsed cache TTL.
func (c CacheConfig) TTLDuration() time.Duration {
	return durationOr(c.TTL, 30*time.Second)
}

// Cacheable reports whether command responses may be cached.
func (c CacheConfig) Cacheable(command string) bool {
	if !c.Enabled {
		return false
	}
	for _, name := range c.Commands {
		if strings.EqualFold(name, command) {
			return true
		}
	}
	return false
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parsePositiveDuration(field, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", field, raw, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s: must be > 0, got %q", field, raw)
	}
	return nil
}
