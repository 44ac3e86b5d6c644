// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/invowk/pkgtab/internal/cache"
	"github.com/invowk/pkgtab/internal/issue"

	"github.com/spf13/cobra"
)

func newCacheCommand(app *App) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the winget result cache",
		Long: `Manage the cache of captured winget output.

'winget list' captures stay fresh for cache.list_ttl and 'winget search'
captures for cache.search_ttl. Installing a package discards the listing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached capture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}

			store := app.store
			if store == nil {
				sqlStore, err := openCacheFile(cmd.Context(), cfg, newLogger(app.stderr, app.flags.verbose))
				if err != nil {
					return issue.NewErrorContext().
						WithOperation("open result cache").
						WithIssue(issue.CacheUnavailableId).
						Wrap(err).
						BuildError()
				}
				defer sqlStore.Close()
				store = sqlStore
			}

			n, err := store.Clear(cmd.Context())
			if err != nil {
				return issue.WrapWithOperation(err, "clear result cache")
			}
			_, err = fmt.Fprintf(app.stdout, "%s Removed %d cached captures\n", SuccessStyle.Render("✓"), n)
			return err
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the cache database path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			dir, err := cfg.Cache.CacheDir()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(app.stdout, filepath.Join(dir, cache.FileName))
			return err
		},
	})

	return cacheCmd
}
