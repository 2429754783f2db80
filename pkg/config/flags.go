package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands.
type Flag struct {
	// Name is the long flag name (e.g. "url").
	Name string

	// Shorthand is the one-letter short flag (e.g. "u"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "endpoint.url").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddIntFlag, AddBoolFlag
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagURL              = "url"
	FlagPath             = "path"
	FlagAPIKey           = "api-key"
	FlagAPIKeyHeader     = "api-key-header"
	FlagAnthropicVersion = "anthropic-version"
	FlagTimeout          = "timeout"
	FlagModel            = "model"
	FlagMaxTokens        = "max-tokens"
	FlagPrompt           = "prompt"
	FlagBudgetTokens     = "budget-tokens"
	FlagRecordDir        = "record"
	FlagRender           = "render"
)

// RunFlags are the flags of the run command, all of which are backed by
// config keys.
var RunFlags = FlagSet{
	FlagURL: {
		Name:        "url",
		Shorthand:   "u",
		ViperKey:    "endpoint.url",
		Description: "Base URL of the chat-completion API",
	},
	FlagPath: {
		Name:        "path",
		ViperKey:    "endpoint.path",
		Description: "Endpoint path appended to the base URL",
	},
	FlagAPIKey: {
		Name:        "api-key",
		Shorthand:   "k",
		ViperKey:    "endpoint.api_key",
		Description: "API key sent with every request",
	},
	FlagAPIKeyHeader: {
		Name:        "api-key-header",
		ViperKey:    "endpoint.api_key_header",
		Description: "Header the API key is sent in",
	},
	FlagAnthropicVersion: {
		Name:        "anthropic-version",
		ViperKey:    "endpoint.anthropic_version",
		Description: "Value of the anthropic-version header (omitted when empty)",
	},
	FlagTimeout: {
		Name:        "timeout",
		Shorthand:   "t",
		ViperKey:    "endpoint.timeout",
		Description: "Per-request timeout including streaming, e.g. 30s (empty for none)",
	},
	FlagModel: {
		Name:        "model",
		Shorthand:   "m",
		ViperKey:    "request.model",
		Description: "Model identifier",
	},
	FlagMaxTokens: {
		Name:        "max-tokens",
		ViperKey:    "request.max_tokens",
		Description: "Maximum tokens to generate",
	},
	FlagPrompt: {
		Name:        "prompt",
		ViperKey:    "request.prompt",
		Description: "User message sent in every scenario",
	},
	FlagBudgetTokens: {
		Name:        "budget-tokens",
		Shorthand:   "b",
		ViperKey:    "thinking.budget_tokens",
		Description: "Thinking token budget for scenarios with thinking enabled",
	},
	FlagRecordDir: {
		Name:        "record",
		ViperKey:    "output.record_dir",
		Description: "Directory to write each scenario's raw SSE stream to",
	},
	FlagRender: {
		Name:        "render",
		ViperKey:    "output.render",
		Description: "Render the answer text as markdown after each scenario",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, key string, target *int) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// Keys returns the registry keys of fs.
func (fs FlagSet) Keys() []string {
	keys := make([]string, 0, len(fs))
	for k := range fs {
		keys = append(keys, k)
	}
	return keys
}

func defaultsViper() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	return defaultsViper().GetString(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	return defaultsViper().GetInt(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	return defaultsViper().GetBool(viperKey)
}
