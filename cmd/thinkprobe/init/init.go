// Package initcmder provides the init command for initializing a local
// .thinkprobe directory in the current working directory.
package initcmder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/thinkprobe/pkg/config"
	"github.com/papercomputeco/thinkprobe/pkg/dotdir"
)

// maxPresetSize bounds a remote preset download.
const maxPresetSize = 1 << 20

const initLongDesc string = `Initialize a new .thinkprobe/ directory in the current working directory.

Creates a local .thinkprobe/ directory that takes precedence over the default
~/.thinkprobe/ directory, so each project can probe its own endpoint.

With --preset a config.toml is written as well. A preset is either a built-in
name or an http(s) URL of a config.toml to download:
  local       a compatible server on http://localhost:8000
  anthropic   the hosted API (set THINKPROBE_ENDPOINT_API_KEY, e.g. in .env)

Examples:
  thinkprobe init
  thinkprobe init --preset anthropic
  thinkprobe init --preset https://example.com/thinkprobe.toml`

const initShortDesc string = "Initialize a local .thinkprobe/ directory"

type initCommander struct {
	preset string
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "",
		fmt.Sprintf("Write a config.toml from a preset (%s) or URL", strings.Join(config.ValidPresetNames(), ", ")))

	return cmd
}

func (c *initCommander) run(ctx context.Context, w io.Writer) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	// Resolve the preset first so a bad name leaves nothing behind.
	var cfg *config.Config
	if c.preset != "" {
		cfg, err = c.loadPreset(ctx)
		if err != nil {
			return err
		}
	}

	dir, created, err := dotdir.NewManager().Init(cwd)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(w, "Initialized %s directory: %s\n", dotdir.DirName, dir)
	} else {
		fmt.Fprintf(w, "Already initialized: %s\n", dir)
	}

	if cfg == nil {
		return nil
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %s preset: %s\n", c.preset, filepath.Join(dir, "config.toml"))
	return nil
}

func (c *initCommander) loadPreset(ctx context.Context) (*config.Config, error) {
	if !strings.HasPrefix(c.preset, "http://") && !strings.HasPrefix(c.preset, "https://") {
		return config.PresetConfig(c.preset)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.preset, nil)
	if err != nil {
		return nil, fmt.Errorf("creating remote config request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPresetSize))
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	cfg, err := config.ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}
	cfg.Version = config.CurrentV
	return cfg, nil
}
