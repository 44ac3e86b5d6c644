// SPDX-License-Identifier: MPL-2.0

package tabparse

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// widthCond measures runes the way a non-East-Asian console does. It is fixed rather
// than derived from the environment so results do not depend on the caller's locale.
var widthCond = &runewidth.Condition{EastAsianWidth: false}

type (
	// cell is the position of one rune: its byte offset and the display column it starts at.
	cell struct {
		off int
		col int
	}

	// cells indexes a line by rune. The final entry is a sentinel at the end of the line.
	cells struct {
		text string
		at   []cell
	}
)

func newCells(s string) cells {
	at := make([]cell, 0, utf8.RuneCountInString(s)+1)
	col := 0
	for off, r := range s {
		at = append(at, cell{off: off, col: col})
		col += runeWidth(r)
	}
	at = append(at, cell{off: len(s), col: col})
	return cells{text: s, at: at}
}

func runeWidth(r rune) int {
	if r == '\t' {
		return 1
	}
	return widthCond.RuneWidth(r)
}

func isPad(r rune) bool {
	return r == ' ' || r == '\t'
}

// runes returns the number of runes in the line.
func (c cells) runes() int { return len(c.at) - 1 }

// rune returns the i-th rune.
func (c cells) rune(i int) rune {
	r, _ := utf8.DecodeRuneInString(c.text[c.at[i].off:])
	return r
}

// indexAtCol returns the rune index that starts exactly at display column col.
func (c cells) indexAtCol(col int) (int, bool) {
	lo, hi := 0, len(c.at)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case c.at[mid].col == col:
			// Zero-width runes share a column with their base; take the first one.
			for mid > 0 && c.at[mid-1].col == col {
				mid--
			}
			return mid, true
		case c.at[mid].col < col:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return 0, false
}

// indexAtByte returns the rune index starting at byte offset off.
func (c cells) indexAtByte(off int) int {
	lo, hi := 0, len(c.at)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if c.at[mid].off < off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// DetectBoundary finds the first run of two or more consecutive spaces in line.
//
// Scanning starts at the first non-space character, so indentation is never taken for a
// column gap. A line with no such run, or made only of spaces, reports Found == false.
// StartIndex and RunLength are display columns; for ASCII text they equal character
// indices.
func DetectBoundary(line string) BoundaryInfo {
	return detect(newCells(line))
}

func detect(c cells) BoundaryInfo {
	n := c.runes()
	i := 0
	for i < n && isPad(c.rune(i)) {
		i++
	}
	for ; i+1 < n; i++ {
		if !isPad(c.rune(i)) || !isPad(c.rune(i+1)) {
			continue
		}
		end := i + 2
		for end < n && isPad(c.rune(end)) {
			end++
		}
		return BoundaryInfo{
			StartIndex: c.at[i].col,
			RunLength:  c.at[end].col - c.at[i].col,
			Found:      true,
		}
	}
	return BoundaryInfo{}
}
