// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/pkgtab/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/pkgtab/config.cue on macOS, %APPDATA%\pkgtab\config.cue
// on Windows) and validated against an embedded CUE schema. Every key can be overridden
// with a PKGTAB_ environment variable, dots replaced by underscores
// (PKGTAB_CACHE_LIST_TTL=10s).
package config
