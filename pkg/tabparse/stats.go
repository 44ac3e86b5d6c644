// SPDX-License-Identifier: MPL-2.0

package tabparse

import "strings"

// edgeTolerance is how far, in display columns, a row's edge may drift from the modal
// edge before it is re-split. Ambiguous-width glyphs account for one column of drift.
const edgeTolerance = 1

// Reconcile computes the column statistics of a table from its classified rows.
//
// The modal edge is taken from normal rows only; ties go to the smaller column. When no
// row is normal, the smallest truncated edge is used instead.
func Reconcile(records []FieldRecord) ColumnStats {
	stats := ColumnStats{FrequencyTable: make(map[int]int)}
	minTruncated := -1
	for _, rec := range records {
		switch rec.Kind {
		case LineNormal:
			stats.NormalCount++
			stats.FrequencyTable[rec.Edge]++
		case LineTruncated:
			stats.TruncatedCount++
			if minTruncated < 0 || rec.Edge < minTruncated {
				minTruncated = rec.Edge
			}
		}
	}

	best := 0
	for edge, count := range stats.FrequencyTable {
		if count > best || (count == best && edge < stats.ModalBoundaryStart) {
			best = count
			stats.ModalBoundaryStart = edge
		}
	}
	if stats.NormalCount == 0 && minTruncated >= 0 {
		stats.ModalBoundaryStart = minTruncated
	}
	return stats
}

// HasMode reports whether the statistics carry an edge derived from normal rows.
func (s ColumnStats) HasMode() bool {
	return s.NormalCount > 0
}

// Realign re-splits line at the modal edge when rec's own edge disagrees with it.
//
// A normal row is re-split when its edge deviates from the mode by more than one column;
// this merges a double space inside a multi-word name back into the name, and separates
// a name that filled its column and is followed by a single space. A truncated row is
// re-split only when its marker sits past the modal edge, which means the marker belongs
// to a later column. The row is left alone when the modal edge does not fall on the start
// of a field that is preceded by padding. The boolean reports whether rec changed.
func Realign(line string, rec FieldRecord, stats ColumnStats) (FieldRecord, bool) {
	return realign(newCells(line), 0, rec, stats)
}

// realign works on a line whose first rune sits at display column base.
func realign(c cells, base int, rec FieldRecord, stats ColumnStats) (FieldRecord, bool) {
	if !stats.HasMode() {
		return rec, false
	}
	mode := stats.ModalBoundaryStart
	drift := rec.Edge - mode
	switch rec.Kind {
	case LineNormal:
		if drift >= -edgeTolerance && drift <= edgeTolerance {
			return rec, false
		}
	case LineTruncated:
		if drift <= edgeTolerance {
			return rec, false
		}
	default:
		return rec, false
	}

	k, ok := c.indexAtCol(mode - base)
	if !ok || k == 0 || k >= c.runes() || isPad(c.rune(k)) || !isPad(c.rune(k-1)) {
		return rec, false
	}
	pad := k
	for pad > 0 && isPad(c.rune(pad-1)) {
		pad--
	}
	leading := strings.TrimSpace(c.text[:c.at[pad].off])
	if leading == "" {
		return rec, false
	}

	return FieldRecord{
		LeadingField:       leading,
		Remainder:          c.text[c.at[k].off:],
		Kind:               LineNormal,
		TrailingSpaceCount: c.at[k].col - c.at[pad].col,
		Boundary:           rec.Boundary,
		Edge:               mode,
	}, true
}
