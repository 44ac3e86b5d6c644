// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for pkgtab.
//
// Every command that reads packages goes through a winget.Manager. By default the
// manager runs winget and caches the captured tables; --input swaps the live run for
// a saved capture so the same parsing, ranking and rendering apply to files and pipes.
package cmd
