// SPDX-License-Identifier: MPL-2.0

package tabparse

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// separatorPattern matches the dashed rule winget prints under the column titles.
var separatorPattern = regexp.MustCompile(`-{8,}`)

// ParseInstalledPackages parses the captured output of `winget list`.
//
// Records come back in row order. Output without a separator, or with no content rows,
// yields an empty slice; rows that cannot be split are dropped.
func ParseInstalledPackages(rawOutput string) []PackageRecord {
	return Analyze(rawOutput).Packages()
}

// ParseSearchResults parses the captured output of `winget search` and orders the
// records by relevance to searchTerm (see [Rank]).
func ParseSearchResults(rawOutput, searchTerm string) []SearchRecord {
	return Rank(Analyze(rawOutput).SearchRecords(), searchTerm)
}

// ParseInstalledPackagesStrict is ParseInstalledPackages for callers that want invalid
// input reported instead of repaired. It fails only when rawOutput is not valid UTF-8.
func ParseInstalledPackagesStrict(rawOutput string) ([]PackageRecord, error) {
	if err := validateOutput(rawOutput); err != nil {
		return nil, err
	}
	return ParseInstalledPackages(rawOutput), nil
}

// ParseSearchResultsStrict is ParseSearchResults for callers that want invalid input
// reported instead of repaired. It fails when rawOutput is not valid UTF-8 or when
// searchTerm is blank.
func ParseSearchResultsStrict(rawOutput, searchTerm string) ([]SearchRecord, error) {
	if err := validateOutput(rawOutput); err != nil {
		return nil, err
	}
	if strings.TrimSpace(searchTerm) == "" {
		return nil, &InvalidArgumentError{Arg: "searchTerm", Reason: "must not be blank"}
	}
	return ParseSearchResults(rawOutput, searchTerm), nil
}

func validateOutput(raw string) error {
	if !utf8.ValidString(raw) {
		return &InvalidArgumentError{Arg: "rawOutput", Reason: "not valid UTF-8"}
	}
	return nil
}

// Analyze runs the full parse of one captured output and returns every intermediate
// result: the per-row splits, the column statistics of both levels and the rows that
// were dropped, with the reason.
func Analyze(rawOutput string) Table {
	raw := strings.ToValidUTF8(rawOutput, string(utf8.RuneError))
	sections := separatorPattern.Split(raw, -1)
	if len(sections) < 2 {
		return Table{Stats: Reconcile(nil), RemainderStats: Reconcile(nil)}
	}

	t := Table{Header: lastLine(sections[0])}
	content := contentLines(sections[1])
	if len(sections) > 2 && len(content) > 0 && len(contentLines(sections[2])) > 0 {
		// The line right above a second separator titles the next section. A separator
		// with nothing under it is a closing rule and titles nothing.
		last := content[len(content)-1]
		t.Dropped = append(t.Dropped, DroppedLine{Line: last.no, Text: last.text, Reason: DropNextHeader})
		content = content[:len(content)-1]
	}

	type pending struct {
		line  contentLine
		cells cells
		field FieldRecord
	}
	rows := make([]pending, 0, len(content))
	fields := make([]FieldRecord, 0, len(content))
	for _, cl := range content {
		c := newCells(cl.text)
		rec, reason := classify(c, Ellipsis)
		if reason != "" {
			t.Dropped = append(t.Dropped, DroppedLine{Line: cl.no, Text: cl.text, Reason: reason})
			continue
		}
		rows = append(rows, pending{line: cl, cells: c, field: rec})
		fields = append(fields, rec)
	}
	t.Stats = Reconcile(fields)

	t.Rows = make([]Row, len(rows))
	for i, p := range rows {
		rec, moved := realign(p.cells, 0, p.field, t.Stats)
		t.Rows[i] = Row{Line: p.line.no, Text: p.line.text, Field: rec, Realigned: moved}
	}

	// Second level: the same split applied to the remainders, in absolute columns.
	subCells := make([]cells, len(t.Rows))
	subFields := make([]FieldRecord, len(t.Rows))
	subOK := make([]bool, len(t.Rows))
	var classified []FieldRecord
	for i, row := range t.Rows {
		subCells[i] = newCells(row.Field.Remainder)
		rec, reason := classify(subCells[i], Ellipsis)
		if reason != "" {
			continue
		}
		rec.Edge += row.Field.Edge
		subFields[i], subOK[i] = rec, true
		classified = append(classified, rec)
	}
	t.RemainderStats = Reconcile(classified)

	for i := range t.Rows {
		rec := subFields[i]
		if subOK[i] {
			rec, _ = realign(subCells[i], t.Rows[i].Field.Edge, rec, t.RemainderStats)
		}
		t.Rows[i].Rest = splitRemainder(subCells[i].text, rec, subOK[i])
	}
	return t
}

type contentLine struct {
	no   int
	text string
}

// contentLines returns the non-blank lines of a section with carriage return overwrites
// resolved and trailing padding removed. Each line keeps its position in the section,
// counting the remainder of the separator line as line 0, so blank lines still count.
func contentLines(section string) []contentLine {
	var out []contentLine
	for i, line := range strings.Split(section, "\n") {
		line = cleanLine(line)
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, contentLine{no: i, text: line})
	}
	return out
}

// cleanLine drops a trailing CR and, when the console rewrote the line in place (progress
// spinners), keeps only what was written after the last CR.
func cleanLine(line string) string {
	line = strings.TrimRight(line, "\r")
	if i := strings.LastIndexByte(line, '\r'); i >= 0 {
		line = line[i+1:]
	}
	return strings.TrimRight(line, " \t")
}

func lastLine(section string) string {
	lines := strings.Split(section, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(cleanLine(lines[i])); l != "" {
			return l
		}
	}
	return ""
}
