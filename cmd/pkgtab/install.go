// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/invowk/pkgtab/internal/winget"
	"github.com/invowk/pkgtab/pkg/types"

	"github.com/spf13/cobra"
)

func newInstallCommand(app *App) *cobra.Command {
	var (
		location string
		byKey    bool
	)

	installCmd := &cobra.Command{
		Use:   "install <id>",
		Short: "Install a package by exact id or by keywords",
		Long: `Install a package silently by its exact winget id, accepting the source and
package agreements. The cached package listing is discarded afterwards.

With --keyword the argument is a comma-separated keyword list instead, and the
package 'pkgtab best' would print is installed.

The process exits with winget's status when the install fails.`,
		Example: `  pkgtab install Git.Git
  pkgtab install 7zip.7zip --location 'C:\Tools\7zip'
  pkgtab install --keyword "vscode, microsoft"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			id := args[0]
			var out string
			if byKey {
				best, o, kerr := s.manager.InstallByKeyword(cmd.Context(), args[0], location)
				if errors.Is(kerr, winget.ErrNoMatch) {
					return noMatchError("install package", args[0])
				}
				if best.ID != "" {
					id = best.ID
				}
				out, err = o, kerr
			} else {
				out, err = s.manager.Install(cmd.Context(), id, location)
			}

			if s.verbose && out != "" {
				fmt.Fprint(app.stderr, out)
			}
			if err != nil {
				wrapped := wingetError(err, "install package", id)
				var runErr *winget.RunError
				if errors.As(err, &runErr) {
					return &ExitError{Code: types.FromProcess(runErr.ExitCode), Err: wrapped}
				}
				return wrapped
			}

			fmt.Fprintf(app.stdout, "%s Installed %s\n", SuccessStyle.Render("✓"), id)
			return nil
		},
	}

	installCmd.Flags().StringVar(&location, "location", "", "install into this directory")
	installCmd.Flags().BoolVar(&byKey, "keyword", false, "treat the argument as search keywords and install the best match")
	return installCmd
}
