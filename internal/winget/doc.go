// SPDX-License-Identifier: MPL-2.0

// Package winget drives the Windows Package Manager: it captures `winget list` and
// `winget search` output, parses it with pkg/tabparse, and caches the raw captures.
package winget
