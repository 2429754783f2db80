package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/papercomputeco/thinkprobe/pkg/dotdir"
)

// EnvPrefix is the prefix of every environment variable read by viper,
// e.g. THINKPROBE_ENDPOINT_API_KEY.
const EnvPrefix = "THINKPROBE"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), loads a .env file from the working
// directory, and binds environment variables with the THINKPROBE_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (THINKPROBE_ENDPOINT_URL, THINKPROBE_REQUEST_MODEL, etc.),
//     including those loaded from .env
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. .env values never override variables already set in the process.
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	// 4. Environment variables: THINKPROBE_ENDPOINT_URL, THINKPROBE_THINKING_BUDGET_TOKENS, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding existing variables. Missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// FromViper builds a Config from the resolved viper values.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Endpoint: EndpointConfig{
			URL:              v.GetString("endpoint.url"),
			Path:             v.GetString("endpoint.path"),
			APIKey:           v.GetString("endpoint.api_key"),
			APIKeyHeader:     v.GetString("endpoint.api_key_header"),
			AnthropicVersion: v.GetString("endpoint.anthropic_version"),
			Timeout:          v.GetString("endpoint.timeout"),
		},
		Request: RequestConfig{
			Model:     v.GetString("request.model"),
			MaxTokens: v.GetInt("request.max_tokens"),
			Prompt:    v.GetString("request.prompt"),
		},
		Thinking: ThinkingConfig{
			BudgetTokens: v.GetInt("thinking.budget_tokens"),
		},
		Output: OutputConfig{
			RecordDir: v.GetString("output.record_dir"),
			Render:    v.GetBool("output.render"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Endpoint
	v.SetDefault("endpoint.url", d.Endpoint.URL)
	v.SetDefault("endpoint.path", d.Endpoint.Path)
	v.SetDefault("endpoint.api_key", d.Endpoint.APIKey)
	v.SetDefault("endpoint.api_key_header", d.Endpoint.APIKeyHeader)
	v.SetDefault("endpoint.anthropic_version", d.Endpoint.AnthropicVersion)
	v.SetDefault("endpoint.timeout", d.Endpoint.Timeout)

	// Request
	v.SetDefault("request.model", d.Request.Model)
	v.SetDefault("request.max_tokens", d.Request.MaxTokens)
	v.SetDefault("request.prompt", d.Request.Prompt)

	// Thinking
	v.SetDefault("thinking.budget_tokens", d.Thinking.BudgetTokens)

	// Output
	v.SetDefault("output.record_dir", d.Output.RecordDir)
	v.SetDefault("output.render", d.Output.Render)
}
