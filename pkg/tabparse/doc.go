// SPDX-License-Identifier: MPL-2.0

// Package tabparse recovers structured package records from the whitespace-aligned
// tables that winget prints for `winget list` and `winget search`.
//
// The captured text has no delimiter. Columns are separated by runs of padding spaces whose
// width depends on the terminal, values that did not fit are cut short with a trailing
// ellipsis glyph (…), and wide runes shift alignment. The parser works in three steps:
//
//  1. Every content row is split into a leading field and a remainder, either at its first
//     run of two or more spaces or right after a truncation marker.
//  2. The most frequent column edge across all normally split rows is taken as the
//     table's true column edge, and rows that disagree with it are re-split there.
//  3. The same two steps are applied again to the remainders to peel off the id; version
//     and source are then split on plain whitespace.
//
// Column positions are terminal display columns (see [DetectBoundary]), so a CJK rune
// occupies two columns.
//
// All functions are pure and safe for concurrent use. Malformed rows are dropped rather
// than reported; only the Strict entry points return errors, and only for caller mistakes.
package tabparse
