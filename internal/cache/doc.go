// SPDX-License-Identifier: MPL-2.0

// Package cache stores raw winget captures keyed by command kind and argument so repeated
// list and search calls within their TTL skip the winget process. Entries live in a
// SQLite database under the user cache directory.
package cache
