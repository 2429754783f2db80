// Package configcmder provides the config command for managing persistent
// thinkprobe configuration stored in the .thinkprobe/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/thinkprobe/pkg/cliui"
	"github.com/papercomputeco/thinkprobe/pkg/config"
)

const configLongDesc string = `Manage persistent thinkprobe configuration.

Configuration is stored as config.toml in the .thinkprobe/ directory and
provides default values for "thinkprobe run". Flags and THINKPROBE_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  endpoint.url, endpoint.path, endpoint.api_key, endpoint.api_key_header,
  endpoint.anthropic_version, endpoint.timeout,
  request.model, request.max_tokens, request.prompt,
  thinking.budget_tokens,
  output.record_dir, output.render

Use subcommands to get, set, or list configuration values:
  thinkprobe config set <key> <value>    Set a configuration value
  thinkprobe config get <key>            Get a configuration value
  thinkprobe config list                 List all configuration values

Examples:
  thinkprobe config set endpoint.url https://api.anthropic.com
  thinkprobe config set thinking.budget_tokens 4000
  thinkprobe config get request.model
  thinkprobe config list`

const configShortDesc string = "Manage persistent thinkprobe configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func checkKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func loadConfiger(w io.Writer, configDir string) (*config.Configer, error) {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
	return cfger, nil
}

// display redacts secret values and marks empty ones.
func display(key, value string) string {
	switch {
	case value == "":
		return "<not set>"
	case config.IsSecretKey(key):
		return config.Redact(value)
	default:
		return value
	}
}
