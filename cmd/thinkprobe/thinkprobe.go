// Package thinkprobecmder
package thinkprobecmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/thinkprobe/cmd/thinkprobe/config"
	initcmder "github.com/papercomputeco/thinkprobe/cmd/thinkprobe/init"
	runcmder "github.com/papercomputeco/thinkprobe/cmd/thinkprobe/run"
	versioncmder "github.com/papercomputeco/thinkprobe/cmd/version"
)

const thinkprobeLongDesc string = `thinkprobe checks that a Messages API endpoint streams extended
thinking the way clients expect.

It sends the same prompt with thinking enabled and disabled, prints the
server-sent events of each stream and summarises what came back.

Get started with:
  thinkprobe run                          Probe http://localhost:8000
  thinkprobe run --expect-thinking        Fail unless thinking is toggled correctly
  thinkprobe init --preset anthropic      Configure the hosted API`

const thinkprobeShortDesc string = "thinkprobe - extended thinking stream probe"

func NewThinkprobeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thinkprobe",
		Short: thinkprobeShortDesc,
		Long:  thinkprobeLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .thinkprobe/ config directory")

	// Add subcommands
	cmd.AddCommand(runcmder.NewRunCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
