// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/invowk/pkgtab/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `pkgtab config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pkgtab configuration",
		Long: `Manage pkgtab configuration.

Configuration is stored in:
  - Linux: ~/.config/pkgtab/config.cue
  - macOS: ~/Library/Application Support/pkgtab/config.cue
  - Windows: %APPDATA%\pkgtab\config.cue

Every setting can also be given as an environment variable, for example
PKGTAB_CACHE_LIST_TTL=10s or PKGTAB_OUTPUT_FORMAT=json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return err
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	format, err := app.outputFormat(cfg)
	if err != nil {
		return err
	}
	if format != config.OutputTable {
		return encode(app.stdout, format, cfg)
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	path, exists, err := config.ResolvePath(app.loadOptions())
	switch {
	case err != nil || !exists:
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	default:
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), path)
	}

	cacheDir, err := cfg.Cache.CacheDir()
	if err != nil {
		cacheDir = SubtitleStyle.Render("(unavailable)")
	}

	writeSection(w, "winget",
		"command", cfg.Winget.Command,
		"timeout", cfg.Winget.Timeout.String())
	writeSection(w, "cache",
		"enabled", fmt.Sprint(cfg.Cache.Enabled),
		"dir", cacheDir,
		"list_ttl", cfg.Cache.ListTTL.String(),
		"search_ttl", cfg.Cache.SearchTTL.String())
	writeSection(w, "output", "format", cfg.Output.Format.String())
	writeSection(w, "search", "rank", cfg.Search.Rank.String())
	writeSection(w, "ui",
		"color_scheme", cfg.UI.ColorScheme.String(),
		"verbose", fmt.Sprint(cfg.UI.Verbose))
	return nil
}

// writeSection prints a titled block of key/value pairs.
func writeSection(w io.Writer, title string, kv ...string) {
	fmt.Fprintf(w, "\n%s:\n", KeyStyle.Render(title))
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(w, "  %s: %s\n", kv[i], SuccessStyle.Render(kv[i+1]))
	}
}

func showConfigPath(app *App) error {
	path, exists, err := config.ResolvePath(app.loadOptions())
	if err != nil {
		return err
	}
	state := "not created"
	if exists {
		state = "exists"
	}
	_, err = fmt.Fprintf(app.stdout, "Config file: %s (%s)\n", path, state)
	return err
}

func initConfig(app *App) error {
	path, written, err := config.CreateDefaultConfig(app.loadOptions())
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !written {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
