package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/thinkprobe/pkg/cliui"
)

const getLongDesc string = `Get a configuration value.

Reads the value for the given key from the config.toml file stored in the
.thinkprobe/ directory. Secret values such as endpoint.api_key are redacted
unless --reveal is given.

Examples:
  thinkprobe config get endpoint.url
  thinkprobe config get endpoint.api_key --reveal`

const getShortDesc string = "Get a configuration value"

func newGetCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: getShortDesc,
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runGet(cmd.OutOrStdout(), args[0], configDir, reveal)
		},
		ValidArgsFunction: completeKeys,
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print secret values in full")

	return cmd
}

func runGet(w io.Writer, key, configDir string, reveal bool) error {
	if err := checkKey(key); err != nil {
		return err
	}

	cfger, err := loadConfiger(w, configDir)
	if err != nil {
		return err
	}

	value, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	shown := display(key, value)
	if reveal && value != "" {
		shown = value
	}

	style := cliui.ValueStyle
	if value == "" {
		style = cliui.DimStyle
	}
	fmt.Fprintf(w, "  %s  %s\n\n", cliui.KeyStyle.Render(key), style.Render(shown))
	return nil
}
