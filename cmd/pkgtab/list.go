// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

func newListCommand(app *App) *cobra.Command {
	var input string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		Long: `List installed packages as reported by 'winget list'.

Names and ids that winget cut short keep their trailing "…".`,
		Example: `  pkgtab list
  winget list > list.txt && pkgtab list --input list.txt
  winget list | pkgtab list --input - --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			captures, err := app.captureFrom("list", input)
			if err != nil {
				return err
			}
			s, err := app.open(cmd.Context(), captures)
			if err != nil {
				return err
			}
			defer s.Close()

			pkgs, err := s.manager.List(cmd.Context())
			if err != nil {
				return wingetError(err, "list installed packages", "winget list")
			}
			return writePackages(app.stdout, s.format, pkgs)
		},
	}

	listCmd.Flags().StringVar(&input, "input", "", `parse a saved 'winget list' capture ("-" reads stdin)`)
	return listCmd
}
