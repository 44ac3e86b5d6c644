// SPDX-License-Identifier: MPL-2.0

package tabparse

import "strings"

// Classify splits line into its leading field and remainder.
//
// A line is truncated when marker appears before the first double-space run, or when
// there is no such run at all: the leading field then runs up to and including the
// marker, since a renderer that elides text often drops the padding as well. Otherwise
// the line is normal and splits at the run. ok is false when the line has neither a run
// nor a marker, or when the leading field would be empty; such lines carry no record.
// An empty marker disables truncation handling.
func Classify(line, marker string) (rec FieldRecord, ok bool) {
	rec, reason := classify(newCells(line), marker)
	return rec, reason == ""
}

func classify(c cells, marker string) (FieldRecord, DropReason) {
	b := detect(c)

	if marker != "" {
		if mb := strings.Index(c.text, marker); mb >= 0 {
			mi := c.indexAtByte(mb)
			if !b.Found || c.at[mi].col < b.StartIndex {
				return splitAfterMarker(c, b, mb+len(marker))
			}
		}
	}

	if !b.Found {
		return FieldRecord{}, DropNoBoundary
	}

	start, _ := c.indexAtCol(b.StartIndex)
	end, _ := c.indexAtCol(b.StartIndex + b.RunLength)
	rec := FieldRecord{
		LeadingField:       strings.TrimSpace(c.text[:c.at[start].off]),
		Remainder:          c.text[c.at[end].off:],
		Kind:               LineNormal,
		TrailingSpaceCount: b.RunLength,
		Boundary:           b,
		Edge:               b.StartIndex + b.RunLength,
	}
	if rec.LeadingField == "" {
		return FieldRecord{}, DropEmptyName
	}
	return rec, ""
}

// splitAfterMarker cuts the line right after the marker that ends at byte offset cut.
func splitAfterMarker(c cells, b BoundaryInfo, cut int) (FieldRecord, DropReason) {
	i := c.indexAtByte(cut)
	j := i
	for j < c.runes() && isPad(c.rune(j)) {
		j++
	}
	rec := FieldRecord{
		LeadingField:       strings.TrimSpace(c.text[:cut]),
		Remainder:          c.text[c.at[j].off:],
		Kind:               LineTruncated,
		TrailingSpaceCount: c.at[j].col - c.at[i].col,
		Boundary:           b,
		Edge:               c.at[j].col,
	}
	if rec.LeadingField == "" {
		return FieldRecord{}, DropEmptyName
	}
	return rec, ""
}
