// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown troubleshooting
// guides that the CLI renders when a command fails.
package issue
