package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent thinkprobe configuration stored as
// config.toml in the .thinkprobe/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version  int            `toml:"version"`
	Endpoint EndpointConfig `toml:"endpoint"`
	Request  RequestConfig  `toml:"request"`
	Thinking ThinkingConfig `toml:"thinking"`
	Output   OutputConfig   `toml:"output"`
}

// EndpointConfig holds the connection settings for the probed API.
// URL is scheme + host + port; Path is appended to it.
type EndpointConfig struct {
	URL              string `toml:"url,omitempty"`
	Path             string `toml:"path,omitempty"`
	APIKey           string `toml:"api_key,omitempty"`
	APIKeyHeader     string `toml:"api_key_header,omitempty"`
	AnthropicVersion string `toml:"anthropic_version,omitempty"`

	// Timeout is a Go duration string ("30s", "5m"). Empty means no timeout.
	Timeout string `toml:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout. An empty value yields zero.
func (e EndpointConfig) TimeoutDuration() (time.Duration, error) {
	if e.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid endpoint.timeout %q: %w", e.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid endpoint.timeout %q: must not be negative", e.Timeout)
	}
	return d, nil
}

// RequestConfig holds the request body settings shared by every scenario.
type RequestConfig struct {
	Model     string `toml:"model,omitempty"`
	MaxTokens int    `toml:"max_tokens,omitempty"`
	Prompt    string `toml:"prompt,omitempty"`
}

// ThinkingConfig holds the extended reasoning settings used by scenarios that
// enable thinking.
type ThinkingConfig struct {
	BudgetTokens int `toml:"budget_tokens,omitempty"`
}

// OutputConfig holds settings for how probe results are presented and kept.
type OutputConfig struct {
	// RecordDir receives the raw SSE bytes of every scenario when set.
	RecordDir string `toml:"record_dir,omitempty"`

	// Render prints the accumulated answer as terminal markdown.
	Render bool `toml:"render,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get    func(c *Config) string
	set    func(c *Config, v string) error
	secret bool
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"endpoint.url": {
		get: func(c *Config) string { return c.Endpoint.URL },
		set: func(c *Config, v string) error { c.Endpoint.URL = v; return nil },
	},
	"endpoint.path": {
		get: func(c *Config) string { return c.Endpoint.Path },
		set: func(c *Config, v string) error { c.Endpoint.Path = v; return nil },
	},
	"endpoint.api_key": {
		get:    func(c *Config) string { return c.Endpoint.APIKey },
		set:    func(c *Config, v string) error { c.Endpoint.APIKey = v; return nil },
		secret: true,
	},
	"endpoint.api_key_header": {
		get: func(c *Config) string { return c.Endpoint.APIKeyHeader },
		set: func(c *Config, v string) error { c.Endpoint.APIKeyHeader = v; return nil },
	},
	"endpoint.anthropic_version": {
		get: func(c *Config) string { return c.Endpoint.AnthropicVersion },
		set: func(c *Config, v string) error { c.Endpoint.AnthropicVersion = v; return nil },
	},
	"endpoint.timeout": {
		get: func(c *Config) string { return c.Endpoint.Timeout },
		set: func(c *Config, v string) error {
			e := EndpointConfig{Timeout: v}
			if _, err := e.TimeoutDuration(); err != nil {
				return err
			}
			c.Endpoint.Timeout = v
			return nil
		},
	},
	"request.model": {
		get: func(c *Config) string { return c.Request.Model },
		set: func(c *Config, v string) error { c.Request.Model = v; return nil },
	},
	"request.max_tokens": {
		get: func(c *Config) string { return formatPositiveInt(c.Request.MaxTokens) },
		set: func(c *Config, v string) error {
			n, err := parsePositiveInt("request.max_tokens", v)
			if err != nil {
				return err
			}
			c.Request.MaxTokens = n
			return nil
		},
	},
	"request.prompt": {
		get: func(c *Config) string { return c.Request.Prompt },
		set: func(c *Config, v string) error { c.Request.Prompt = v; return nil },
	},
	"thinking.budget_tokens": {
		get: func(c *Config) string { return formatPositiveInt(c.Thinking.BudgetTokens) },
		set: func(c *Config, v string) error {
			n, err := parsePositiveInt("thinking.budget_tokens", v)
			if err != nil {
				return err
			}
			c.Thinking.BudgetTokens = n
			return nil
		},
	},
	"output.record_dir": {
		get: func(c *Config) string { return c.Output.RecordDir },
		set: func(c *Config, v string) error { c.Output.RecordDir = v; return nil },
	},
	"output.render": {
		get: func(c *Config) string { return strconv.FormatBool(c.Output.Render) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for output.render: %w", err)
			}
			c.Output.Render = b
			return nil
		},
	},
}

func formatPositiveInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func parsePositiveInt(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid value for %s: must be positive, got %d", key, n)
	}
	return n, nil
}
