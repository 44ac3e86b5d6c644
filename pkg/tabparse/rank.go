// SPDX-License-Identifier: MPL-2.0

package tabparse

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	tierExactID = iota
	tierNameMatch
	tierOther
)

type rankKey struct {
	tier    int
	pos     int
	nameLen int
}

// Rank orders search results by closeness to term and returns them as a new slice.
//
// Records whose id equals term (case-insensitively) come first. Records whose name
// contains term follow, earlier matches first and then shorter names first. Everything
// else keeps its original order after them. The sort is stable, so records with equal
// keys keep their input order.
func Rank(records []SearchRecord, term string) []SearchRecord {
	needle := strings.ToLower(strings.TrimSpace(term))
	type keyed struct {
		rec SearchRecord
		key rankKey
	}
	items := make([]keyed, len(records))
	for i, rec := range records {
		items[i] = keyed{rec: rec, key: rankOf(rec, needle)}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		if a.key.tier != b.key.tier {
			return cmp.Compare(a.key.tier, b.key.tier)
		}
		if a.key.tier != tierNameMatch {
			return 0
		}
		if a.key.pos != b.key.pos {
			return cmp.Compare(a.key.pos, b.key.pos)
		}
		return cmp.Compare(a.key.nameLen, b.key.nameLen)
	})

	out := make([]SearchRecord, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out
}

func rankOf(rec SearchRecord, needle string) rankKey {
	if needle == "" {
		return rankKey{tier: tierOther}
	}
	if strings.ToLower(rec.ID) == needle {
		return rankKey{tier: tierExactID}
	}
	// Positions and lengths are in characters; ToLower maps rune for rune.
	lowered := strings.ToLower(rec.Name)
	if off := strings.Index(lowered, needle); off >= 0 {
		return rankKey{
			tier:    tierNameMatch,
			pos:     utf8.RuneCountInString(lowered[:off]),
			nameLen: utf8.RuneCountInString(rec.Name),
		}
	}
	return rankKey{tier: tierOther}
}

// NormalizeKeywords splits a comma-separated keyword list and drops empty entries.
func NormalizeKeywords(keywords string) []string {
	var out []string
	for _, k := range strings.Split(keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// MatchScore counts, over all keywords, how many of the record's fields contain the
// keyword case-insensitively.
func MatchScore(rec SearchRecord, keywords []string) int {
	fields := [...]string{
		strings.ToLower(rec.Name),
		strings.ToLower(rec.ID),
		strings.ToLower(rec.Version),
		strings.ToLower(rec.Source),
	}
	score := 0
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		for _, f := range fields {
			if strings.Contains(f, kw) {
				score++
			}
		}
	}
	return score
}

// IsValidVersion reports whether v looks like a dotted version such as "1.85.0".
// At least two dot-separated parts are required, each made only of ASCII letters and
// digits, and the word "unknown" disqualifies the value.
func IsValidVersion(v string) bool {
	if v == "" || strings.Contains(strings.ToLower(v), "unknown") {
		return false
	}
	parts := strings.Split(v, ".")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
				return false
			}
		}
	}
	return true
}

// ScoreRank orders search results for a keyword list and returns them as a new slice.
//
// Higher MatchScore comes first. Within a score, valid versions precede invalid ones and
// complete records (all four fields set) precede incomplete ones. Valid versions are then
// ordered newest first; invalid ones by name. The sort is stable.
func ScoreRank(records []SearchRecord, keywords []string) []SearchRecord {
	type scored struct {
		rec      SearchRecord
		score    int
		valid    bool
		complete bool
	}
	items := make([]scored, len(records))
	for i, rec := range records {
		valid := IsValidVersion(rec.Version)
		items[i] = scored{
			rec:      rec,
			score:    MatchScore(rec, keywords),
			valid:    valid,
			complete: valid && rec.Name != "" && rec.ID != "" && rec.Source != "",
		}
	}
	slices.SortStableFunc(items, func(a, b scored) int {
		if a.score != b.score {
			return cmp.Compare(b.score, a.score)
		}
		if a.valid != b.valid {
			return boolFirst(a.valid)
		}
		if a.complete != b.complete {
			return boolFirst(a.complete)
		}
		if a.valid {
			return compareVersions(b.rec.Version, a.rec.Version)
		}
		return strings.Compare(a.rec.Name, b.rec.Name)
	})

	out := make([]SearchRecord, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out
}

func boolFirst(aTrue bool) int {
	if aTrue {
		return -1
	}
	return 1
}

// compareVersions compares two version strings, treating runs of digits as numbers.
func compareVersions(a, b string) int {
	for a != "" && b != "" {
		ca, ra := versionChunk(a)
		cb, rb := versionChunk(b)
		if c := compareChunk(ca, cb); c != 0 {
			return c
		}
		a, b = ra, rb
	}
	return cmp.Compare(len(a), len(b))
}

// versionChunk returns the leading run of digits, or of non-digits, and the rest.
func versionChunk(s string) (chunk, rest string) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], s[i:]
}

func compareChunk(a, b string) int {
	if isDigit(a[0]) && isDigit(b[0]) {
		a = strings.TrimLeft(a, "0")
		b = strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			return cmp.Compare(len(a), len(b))
		}
	}
	return strings.Compare(a, b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
