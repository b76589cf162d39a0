package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/lydakis/hostbridge/internal/paths"
)

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads the config file and returns the parsed Config.
// If the config file does not exist, it returns Default() (no error).
func Load() (*Config, error) {
	return LoadFrom(paths.ConfigFile())
}

// LoadFrom reads and parses a config file at the given path. Keys absent
// from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Channel.CommandTimeouts == nil {
		cfg.Channel.CommandTimeouts = map[string]string{}
	}
	expandConfigEnvVars(cfg)
	return cfg, nil
}

// ExampleConfigPath returns the default config file path (for help messages).
func ExampleConfigPath() string {
	return paths.ConfigFile()
}

func expandConfigEnvVars(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Host.Address = expandEnvVars(cfg.Host.Address)
	cfg.Host.Path = expandEnvVars(cfg.Host.Path)
	cfg.Host.Plan = expandEnvVars(cfg.Host.Plan)
	for k, v := range cfg.Host.Headers {
		cfg.Host.Headers[k] = expandEnvVars(v)
	}
	cfg.Log.Level = expandEnvVars(cfg.Log.Level)
	cfg.Channel.ReconnectInterval = expandEnvVars(cfg.Channel.ReconnectInterval)
	cfg.Channel.ConnectTimeout = expandEnvVars(cfg.Channel.ConnectTimeout)
	cfg.Channel.CommandTimeout = expandEnvVars(cfg.Channel.CommandTimeout)
	for k, v := range cfg.Channel.CommandTimeouts {
		cfg.Channel.CommandTimeouts[k] = expandEnvVars(v)
	}
	cfg.Cache.TTL = expandEnvVars(cfg.Cache.TTL)
}

// expandEnvVars replaces ${VAR_NAME} with the value of the environment variable.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarRe.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match // leave unresolved vars as-is
	})
}
