// SPDX-License-Identifier: MPL-2.0

package tabparse

import "strings"

// ParseRemainder splits the text that follows a row's name into id, version and source.
//
// The id is peeled off with the same boundary and marker rules as the name; a truncated
// id keeps its marker. When the remainder has neither a double-space run nor a marker,
// the id is its first whitespace-separated token. What follows the id is split on plain
// whitespace: the first token is the version and the remaining tokens, joined by single
// spaces, are the source. An empty remainder yields an empty Remainder.
func ParseRemainder(remainder string) Remainder {
	c := newCells(strings.TrimSpace(remainder))
	rec, reason := classify(c, Ellipsis)
	return splitRemainder(c.text, rec, reason == "")
}

// splitRemainder finishes a remainder whose id split is already known.
func splitRemainder(text string, rec FieldRecord, ok bool) Remainder {
	if !ok {
		tokens := strings.Fields(text)
		if len(tokens) == 0 {
			return Remainder{}
		}
		return withTail(tokens[0], tokens[1:])
	}
	return withTail(rec.LeadingField, strings.Fields(rec.Remainder))
}

func withTail(id string, tail []string) Remainder {
	out := Remainder{ID: id}
	if len(tail) > 0 {
		out.Version = tail[0]
		out.Source = strings.Join(tail[1:], " ")
	}
	return out
}
