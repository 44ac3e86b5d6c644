// SPDX-License-Identifier: MPL-2.0

package tabparse

import (
	"errors"
	"fmt"
)

// Ellipsis is the truncation marker winget's console renderer emits when a value does
// not fit its column. It is emitted regardless of locale.
const Ellipsis = "…"

const (
	// LineNormal marks a row whose leading field ended at a run of two or more spaces.
	LineNormal LineKind = iota + 1
	// LineTruncated marks a row whose leading field ended at a truncation marker.
	LineTruncated
)

const (
	// DropNoBoundary means the row had neither a double-space run nor a marker. Such rows
	// are wrapped continuations or footer prose, not records.
	DropNoBoundary DropReason = "no column boundary"
	// DropEmptyName means the leading field was empty after trimming.
	DropEmptyName DropReason = "empty leading field"
	// DropNextHeader means the row is the header of a following table section.
	DropNextHeader DropReason = "header of next section"
)

// ErrInvalidArgument is the sentinel wrapped by InvalidArgumentError.
var ErrInvalidArgument = errors.New("invalid argument")

type (
	// LineKind tags how a row's leading field was bounded.
	LineKind int

	// DropReason explains why a content row produced no record.
	DropReason string

	// BoundaryInfo describes the first run of two or more spaces in a line.
	// StartIndex and RunLength are measured in display columns.
	BoundaryInfo struct {
		StartIndex int
		RunLength  int
		Found      bool
	}

	// FieldRecord is one row split into its leading field and the rest.
	FieldRecord struct {
		// LeadingField is the first column's text, trimmed. For truncated rows it ends
		// with the marker.
		LeadingField string
		// Remainder is everything after the padding that follows the leading field.
		Remainder string
		// Kind is LineNormal or LineTruncated.
		Kind LineKind
		// TrailingSpaceCount is the width of the padding between the leading field and
		// the remainder.
		TrailingSpaceCount int
		// Boundary is the raw detector result for the row, kept for statistics.
		Boundary BoundaryInfo
		// Edge is the display column where the remainder starts.
		Edge int
	}

	// ColumnStats summarizes where the rows of one table place their column edge.
	ColumnStats struct {
		// ModalBoundaryStart is the most frequent Edge among normal rows, or the
		// smallest truncated Edge when there are no normal rows.
		ModalBoundaryStart int
		// FrequencyTable counts normal rows per Edge.
		FrequencyTable map[int]int
		NormalCount    int
		TruncatedCount int
	}

	// Remainder holds the columns that follow the name.
	Remainder struct {
		ID      string
		Version string
		Source  string
	}

	// PackageRecord is one row of `winget list`.
	PackageRecord struct {
		Name    string `json:"name" yaml:"name" toml:"name"`
		ID      string `json:"id" yaml:"id" toml:"id"`
		Version string `json:"version" yaml:"version" toml:"version"`
	}

	// SearchRecord is one row of `winget search`.
	SearchRecord struct {
		Name    string `json:"name" yaml:"name" toml:"name"`
		ID      string `json:"id" yaml:"id" toml:"id"`
		Version string `json:"version" yaml:"version" toml:"version"`
		Source  string `json:"source" yaml:"source" toml:"source"`
	}

	// Row is a content row that produced a record.
	Row struct {
		// Line is the 1-based position of the row within the content section.
		Line  int
		Text  string
		Field FieldRecord
		// Realigned reports that the row was re-split at the modal column edge.
		Realigned bool
		Rest      Remainder
	}

	// DroppedLine is a content row that produced no record.
	DroppedLine struct {
		Line   int
		Text   string
		Reason DropReason
	}

	// Table is the full analysis of one captured output. It is what the two Parse
	// entry points build their records from.
	Table struct {
		// Header is the column title line above the separator, if any.
		Header string
		Rows   []Row
		// Stats are the name column statistics.
		Stats ColumnStats
		// RemainderStats are the id column statistics, in absolute display columns.
		RemainderStats ColumnStats
		Dropped        []DroppedLine
	}

	// InvalidArgumentError reports a caller contract violation in the Strict entry points.
	// It wraps ErrInvalidArgument for errors.Is() compatibility.
	InvalidArgumentError struct {
		Arg    string
		Reason string
	}
)

// String returns the kind name.
func (k LineKind) String() string {
	switch k {
	case LineNormal:
		return "normal"
	case LineTruncated:
		return "truncated"
	default:
		return "unknown"
	}
}

// IsTruncated reports whether the row's leading field ended at a truncation marker.
func (r FieldRecord) IsTruncated() bool {
	return r.Kind == LineTruncated
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Arg, e.Reason)
}

// Unwrap returns ErrInvalidArgument so callers can use errors.Is for programmatic detection.
func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

// Packages converts the analyzed rows into list records, in row order.
func (t Table) Packages() []PackageRecord {
	out := make([]PackageRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, PackageRecord{
			Name:    row.Field.LeadingField,
			ID:      row.Rest.ID,
			Version: row.Rest.Version,
		})
	}
	return out
}

// SearchRecords converts the analyzed rows into search records, in row order.
func (t Table) SearchRecords() []SearchRecord {
	out := make([]SearchRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, SearchRecord{
			Name:    row.Field.LeadingField,
			ID:      row.Rest.ID,
			Version: row.Rest.Version,
			Source:  row.Rest.Source,
		})
	}
	return out
}
