// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/invowk/pkgtab/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pkgtab",
		Short: "Read winget package tables",
		Long: TitleStyle.Render("pkgtab") + SubtitleStyle.Render(" - Read winget package tables") + `

pkgtab runs winget, or reads a saved capture of its output, and turns the
space-aligned console tables into records. Column edges are inferred from
how most rows are laid out, so names cut short with "…" and rows that
overflow their column still land in the right fields.

` + SubtitleStyle.Render("Examples:") + `
  pkgtab list                         List installed packages
  pkgtab search vscode                Search and rank by relevance
  pkgtab best "vscode, visual studio" Print the best matching package id
  pkgtab list --input list.txt        Parse a saved 'winget list' capture
  pkgtab list --format json           Print records as JSON
  pkgtab install --keyword git        Install the best match for a keyword`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.flags.configPath, "config", "", "config file (default is <config dir>/pkgtab/config.cue)")
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVarP(&app.flags.format, "format", "o", "", "output format: table, json, yaml or toml (overrides output.format)")
	flags.BoolVar(&app.flags.noCache, "no-cache", false, "always run winget instead of reusing cached output")

	rootCmd.AddCommand(
		newListCommand(app),
		newSearchCommand(app),
		newBestCommand(app),
		newInstalledCommand(app),
		newInstallCommand(app),
		newInspectCommand(app),
		newConfigCommand(app),
		newCacheCommand(app),
		newSourceCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the command's status. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, err, app.flags.verbose, app.issueStyle)
		}),
	)
	if err != nil {
		os.Exit(exitCodeOf(err))
	}
}

// exitCodeOf maps an error to the process exit status. Only an ExitError carrying a
// reportable failure status overrides the generic failure.
func exitCodeOf(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return int(exitErr.Code.Failure())
	}
	return int(types.ExitFailure)
}
