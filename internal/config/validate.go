package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lydakis/hostbridge/internal/logging"
)

// Validate checks configuration invariants and returns actionable errors.
func Validate(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	var errs []error
	errs = append(errs, validateHost(cfg.Host)...)
	errs = append(errs, validateChannel(cfg.Channel)...)
	errs = append(errs, validateCache(cfg.Cache)...)
	errs = append(errs, validateWorkflow(cfg.Workflow)...)

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

func validateHost(h HostConfig) []error {
	var errs []error
	if strings.TrimSpace(h.Address) == "" {
		errs = append(errs, fmt.Errorf("host.address: must not be empty"))
	}
	if h.Port <= 0 || h.Port > 65535 {
		errs = append(errs, fmt.Errorf("host.port: must be in 1..65535, got %d", h.Port))
	}
	for name, value := range h.Headers {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("host.headers: empty header name"))
		}
		if strings.ContainsAny(value, "\r\n") {
			errs = append(errs, fmt.Errorf("host.headers.%s: value contains a line break", name))
		}
	}
	return errs
}

func validateChannel(c ChannelConfig) []error {
	var errs []error
	for field, raw := range map[string]string{
		"channel.reconnect_interval": c.ReconnectInterval,
		"channel.connect_timeout":    c.ConnectTimeout,
		"channel.command_timeout":    c.CommandTimeout,
	} {
		if err := parsePositiveDuration(field, raw); err != nil {
			errs = append(errs, err)
		}
	}

	names := make([]string, 0, len(c.CommandTimeouts))
	for name := range c.CommandTimeouts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := parsePositiveDuration("channel.command_timeouts."+name, c.CommandTimeouts[name]); err != nil {
			errs = append(errs, err)
		}
	}

	// Map iteration order is random; keep error output stable.
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errs
}

func validateCache(c CacheConfig) []error {
	var errs []error
	if err := parsePositiveDuration("cache.ttl", c.TTL); err != nil {
		errs = append(errs, err)
	}
	for i, name := range c.Commands {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("cache.commands[%d]: must not be empty", i))
		}
	}
	return errs
}

func validateWorkflow(w WorkflowConfig) []error {
	var errs []error
	if !(w.SearchRadius > 0) || math.IsInf(w.SearchRadius, 0) {
		errs = append(errs, fmt.Errorf("workflow.search_radius: must be > 0, got %v", w.SearchRadius))
	}
	if w.NetOffset == w.CenterlineOffset {
		errs = append(errs, fmt.Errorf("workflow: net_offset and centerline_offset must differ, both are %v", w.NetOffset))
	}
	return errs
}
