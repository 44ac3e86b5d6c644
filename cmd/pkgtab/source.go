// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/invowk/pkgtab/internal/winget"

	"github.com/spf13/cobra"
)

func newSourceCommand(app *App) *cobra.Command {
	sourceCmd := &cobra.Command{
		Use:   "source",
		Short: "Inspect or repoint winget package sources",
		Long: `Show the package sources winget searches, or point one of them at a mirror.

Changing a source discards cached search results.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	sourceCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print winget's configured sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			out, err := s.manager.Sources(cmd.Context())
			if err != nil {
				return wingetError(err, "list sources", "winget source list")
			}
			_, err = fmt.Fprint(app.stdout, out)
			return err
		},
	})

	var name string
	setCmd := &cobra.Command{
		Use:   "set <url>",
		Short: "Point a source at url, trusting it",
		Long: `Replace the named source (the community "winget" source by default) with
one served from url. Nothing changes when a source already uses url.`,
		Example: `  pkgtab source set https://mirrors.ustc.edu.cn/winget-source`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			changed, err := s.manager.ConfigureSource(cmd.Context(), name, args[0])
			if err != nil {
				return wingetError(err, "configure source", name)
			}
			if !changed {
				_, err = fmt.Fprintf(app.stdout, "Source %s already uses %s\n", name, args[0])
				return err
			}
			_, err = fmt.Fprintf(app.stdout, "%s Source %s now uses %s\n", SuccessStyle.Render("✓"), name, args[0])
			return err
		},
	}
	setCmd.Flags().StringVar(&name, "name", winget.DefaultSourceName, "source to replace")
	sourceCmd.AddCommand(setCmd)

	return sourceCmd
}
