// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/invowk/pkgtab/internal/config"
	"github.com/invowk/pkgtab/internal/issue"
	"github.com/invowk/pkgtab/internal/winget"
	"github.com/invowk/pkgtab/pkg/tabparse"
	"github.com/invowk/pkgtab/pkg/types"

	"github.com/spf13/cobra"
)

type installedReport struct {
	Term      string `json:"term" yaml:"term" toml:"term"`
	Installed bool   `json:"installed" yaml:"installed" toml:"installed"`
}

func newSearchCommand(app *App) *cobra.Command {
	var input, rank string

	searchCmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search the winget sources",
		Long: `Search the winget sources and order the results.

The relevance order puts an exact id match first, then names containing the
term, then everything else. The score order treats the term as comma-separated
keywords and ranks by how many fields contain them, then by version.`,
		Example: `  pkgtab search vscode
  pkgtab search "vscode, microsoft" --rank score
  pkgtab search git --input search.txt --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			captures, err := app.captureFrom("search", input)
			if err != nil {
				return err
			}
			s, err := app.open(cmd.Context(), captures)
			if err != nil {
				return err
			}
			defer s.Close()

			mode := s.cfg.Search.Rank
			if rank != "" {
				mode = config.RankMode(rank)
				if valid, errs := mode.IsValid(); !valid {
					return issue.NewErrorContext().
						WithOperation("select ranking").
						WithResource("--rank").
						WithIssue(issue.InvalidConfigValueId).
						Wrap(errs[0]).
						BuildError()
				}
			}

			results, err := search(cmd.Context(), s, args[0], mode)
			if err != nil {
				return wingetError(err, "search packages", "winget search "+args[0])
			}
			return writeSearchResults(app.stdout, s.format, results)
		},
	}

	searchCmd.Flags().StringVar(&input, "input", "", `parse a saved 'winget search' capture ("-" reads stdin)`)
	searchCmd.Flags().StringVar(&rank, "rank", "", "result order: relevance or score (overrides search.rank)")
	return searchCmd
}

func search(ctx context.Context, s *session, term string, mode config.RankMode) ([]tabparse.SearchRecord, error) {
	if mode == config.RankScore {
		return s.manager.SearchWithPriority(ctx, term)
	}
	return s.manager.Search(ctx, term)
}

// noMatchError is the failure for keywords that matched no package.
func noMatchError(operation, keywords string) error {
	return &ExitError{Code: types.ExitFailure, Err: issue.NewErrorContext().
		WithOperation(operation).
		WithResource(strings.Join(tabparse.NormalizeKeywords(keywords), ", ")).
		WithIssue(issue.NoPackagesFoundId).
		Wrap(winget.ErrNoMatch).
		BuildError()}
}

func newBestCommand(app *App) *cobra.Command {
	var input string

	bestCmd := &cobra.Command{
		Use:   "best <keywords>",
		Short: "Print the id of the best matching package",
		Long: `Search for the first of the comma-separated keywords and print the id of
the result that matches the most keywords. Ties go to the newest version.`,
		Example: `  pkgtab best "vscode, visual studio code"
  pkgtab best git --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			captures, err := app.captureFrom("search", input)
			if err != nil {
				return err
			}
			s, err := app.open(cmd.Context(), captures)
			if err != nil {
				return err
			}
			defer s.Close()

			best, ok, err := s.manager.BestMatch(cmd.Context(), args[0])
			if err != nil {
				return wingetError(err, "find best match", "winget search")
			}
			if !ok {
				return noMatchError("find best match", args[0])
			}

			if s.format == config.OutputTable {
				_, err = fmt.Fprintln(app.stdout, best.ID)
				return err
			}
			return encode(app.stdout, s.format, best)
		},
	}

	bestCmd.Flags().StringVar(&input, "input", "", `parse a saved 'winget search' capture ("-" reads stdin)`)
	return bestCmd
}

func newInstalledCommand(app *App) *cobra.Command {
	var input, listInput string

	installedCmd := &cobra.Command{
		Use:   "installed <term>",
		Short: "Report whether a package matching term is installed",
		Long: `Search for term and compare the result ids with the installed packages.
A package counts as installed when one id contains the other, ignoring case.

Exits with status 1 when nothing matching is installed.`,
		Example: `  pkgtab installed vscode && echo present`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			captures, err := app.captureFrom("search", input)
			if err != nil {
				return err
			}
			listCaptures, err := app.captureFrom("list", listInput)
			if err != nil {
				return err
			}
			if listCaptures != nil {
				if captures == nil {
					captures = map[string]string{}
				}
				captures["list"] = listCaptures["list"]
			}

			s, err := app.open(cmd.Context(), captures)
			if err != nil {
				return err
			}
			defer s.Close()

			installed, err := s.manager.IsInstalled(cmd.Context(), args[0])
			if err != nil {
				return wingetError(err, "check installed packages", args[0])
			}

			report := installedReport{Term: args[0], Installed: installed}
			if s.format == config.OutputTable {
				if installed {
					fmt.Fprintf(app.stdout, "%s %s is installed\n", SuccessStyle.Render("✓"), report.Term)
				} else {
					fmt.Fprintf(app.stdout, "%s %s is not installed\n", WarningStyle.Render("✗"), report.Term)
				}
			} else if err := encode(app.stdout, s.format, report); err != nil {
				return err
			}
			if !installed {
				return &ExitError{Code: types.ExitFailure}
			}
			return nil
		},
	}

	installedCmd.Flags().StringVar(&input, "input", "", `use a saved 'winget search' capture ("-" reads stdin)`)
	installedCmd.Flags().StringVar(&listInput, "list-input", "", "use a saved 'winget list' capture")
	return installedCmd
}
