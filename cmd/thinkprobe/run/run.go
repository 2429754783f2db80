// Package runcmder provides the run command, which probes an endpoint with
// thinking enabled and disabled.
package runcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/thinkprobe/pkg/cliui"
	"github.com/papercomputeco/thinkprobe/pkg/client"
	"github.com/papercomputeco/thinkprobe/pkg/config"
	"github.com/papercomputeco/thinkprobe/pkg/logger"
	"github.com/papercomputeco/thinkprobe/pkg/probe"
)

// logFileName is the JSON log written next to the recorded streams.
const logFileName = "thinkprobe.log"

type runCommander struct {
	// Flag targets. Resolved values are read back from viper into cfg.
	url              string
	path             string
	apiKey           string
	apiKeyHeader     string
	anthropicVersion string
	timeout          string
	model            string
	maxTokens        int
	prompt           string
	budgetTokens     int
	recordDir        string
	render           bool

	scenarios      []string
	expectThinking bool
	debug          bool

	cfg    *config.Config
	logger *slog.Logger
}

const runLongDesc string = `Probe a Messages API endpoint for extended thinking support.

Sends the configured prompt once per scenario and prints every decoded
server-sent event as indented JSON:

  thinking   thinking enabled, every event printed
  plain      thinking disabled, only content block events printed

A summary table follows the streams. Probe failures are printed and never
stop the run. With --expect-thinking the command exits non-zero when a
thinking scenario streamed no thinking, a plain scenario streamed some, or a
request failed.

Values come from flags, THINKPROBE_* environment variables (a .env file in
the working directory is loaded), config.toml, then built-in defaults.`

const runShortDesc string = "Probe an endpoint with and without thinking"

func NewRunCmd() *cobra.Command {
	cmder := &runCommander{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: runShortDesc,
		Long:  runLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.RunFlags, config.RunFlags.Keys())
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmd.SilenceUsage = true
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	config.AddStringFlag(cmd, config.RunFlags, config.FlagURL, &cmder.url)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagPath, &cmder.path)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagAPIKey, &cmder.apiKey)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagAPIKeyHeader, &cmder.apiKeyHeader)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagAnthropicVersion, &cmder.anthropicVersion)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagModel, &cmder.model)
	config.AddIntFlag(cmd, config.RunFlags, config.FlagMaxTokens, &cmder.maxTokens)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagPrompt, &cmder.prompt)
	config.AddIntFlag(cmd, config.RunFlags, config.FlagBudgetTokens, &cmder.budgetTokens)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagRecordDir, &cmder.recordDir)
	config.AddBoolFlag(cmd, config.RunFlags, config.FlagRender, &cmder.render)

	cmd.Flags().StringSliceVarP(&cmder.scenarios, "scenario", "s", nil,
		fmt.Sprintf("Scenario to run, repeatable (%s; default all)", strings.Join(probe.ScenarioNames(), ", ")))
	cmd.Flags().BoolVar(&cmder.expectThinking, "expect-thinking", false,
		"Exit non-zero unless thinking appears only where it was enabled")

	_ = cmd.RegisterFlagCompletionFunc("scenario", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return probe.ScenarioNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *runCommander) run(ctx context.Context, stdout, stderr io.Writer) error {
	scenarios, err := probe.LookupScenarios(c.scenarios)
	if err != nil {
		return err
	}

	timeout, err := c.cfg.Endpoint.TimeoutDuration()
	if err != nil {
		return err
	}

	closeLogger, err := c.initLogger(stderr)
	if err != nil {
		return err
	}
	defer closeLogger()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cl := client.New(client.Config{
		BaseURL:          c.cfg.Endpoint.URL,
		Path:             c.cfg.Endpoint.Path,
		APIKey:           c.cfg.Endpoint.APIKey,
		APIKeyHeader:     c.cfg.Endpoint.APIKeyHeader,
		AnthropicVersion: c.cfg.Endpoint.AnthropicVersion,
		Timeout:          timeout,
	}, c.logger)

	c.logger.Info("probing endpoint",
		"endpoint", cl.Endpoint(),
		"model", c.cfg.Request.Model,
		"scenarios", len(scenarios),
	)

	runner := probe.NewRunner(cl, probe.Config{
		Model:        c.cfg.Request.Model,
		MaxTokens:    c.cfg.Request.MaxTokens,
		Prompt:       c.cfg.Request.Prompt,
		BudgetTokens: c.cfg.Thinking.BudgetTokens,
		RecordDir:    c.cfg.Output.RecordDir,
		Render:       c.cfg.Output.Render,
		Color:        cliui.IsTerminal(stdout),
	}, stdout, c.logger)

	results := runner.Run(ctx, scenarios)
	probe.WriteSummary(stdout, results, c.expectThinking)

	if ctx.Err() != nil {
		return fmt.Errorf("probe interrupted: %w", ctx.Err())
	}
	if c.expectThinking {
		if err := probe.Check(results, true); err != nil {
			return fmt.Errorf("thinking check failed:\n%w", err)
		}
	}
	return nil
}

// initLogger builds the pretty stderr logger and, when recording, a JSON log
// alongside the recorded streams.
func (c *runCommander) initLogger(stderr io.Writer) (func(), error) {
	console := logger.New(
		logger.WithDebug(c.debug),
		logger.WithSource(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(stderr),
	)

	if c.cfg.Output.RecordDir == "" {
		c.logger = console
		return func() {}, nil
	}

	if err := os.MkdirAll(c.cfg.Output.RecordDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating record directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(c.cfg.Output.RecordDir, logFileName),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	c.logger = logger.Multi(
		console,
		logger.New(logger.WithDebug(true), logger.WithSource(c.debug), logger.WithJSON(true), logger.WithWriter(f)),
	)
	return func() { _ = f.Close() }, nil
}
