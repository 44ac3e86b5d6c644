// SPDX-License-Identifier: MPL-2.0

package tabparse

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		line   string
		want   FieldRecord
		wantOK bool
	}{
		{
			name: "normal line",
			line: "Foo Bar   Contoso.Foo   1.2.3",
			want: FieldRecord{
				LeadingField:       "Foo Bar",
				Remainder:          "Contoso.Foo   1.2.3",
				Kind:               LineNormal,
				TrailingSpaceCount: 3,
				Boundary:           BoundaryInfo{StartIndex: 7, RunLength: 3, Found: true},
				Edge:               10,
			},
			wantOK: true,
		},
		{
			name: "marker before boundary",
			line: "Visual Studio Code…  Microsoft.VSCode  1.85.0",
			want: FieldRecord{
				LeadingField:       "Visual Studio Code…",
				Remainder:          "Microsoft.VSCode  1.85.0",
				Kind:               LineTruncated,
				TrailingSpaceCount: 2,
				Boundary:           BoundaryInfo{StartIndex: 19, RunLength: 2, Found: true},
				Edge:               21,
			},
			wantOK: true,
		},
		{
			name: "marker without padding",
			line: "Visual Studio Code…Microsoft.VSCode 1.85.0",
			want: FieldRecord{
				LeadingField: "Visual Studio Code…",
				Remainder:    "Microsoft.VSCode 1.85.0",
				Kind:         LineTruncated,
				Edge:         19,
			},
			wantOK: true,
		},
		{
			name: "marker after boundary belongs to a later column",
			line: "PowerToys  Microsoft.Power…  0.76.2",
			want: FieldRecord{
				LeadingField:       "PowerToys",
				Remainder:          "Microsoft.Power…  0.76.2",
				Kind:               LineNormal,
				TrailingSpaceCount: 2,
				Boundary:           BoundaryInfo{StartIndex: 9, RunLength: 2, Found: true},
				Edge:               11,
			},
			wantOK: true,
		},
		{
			name:   "no boundary and no marker",
			line:   "Foo Bar Contoso.Foo 1.2.3",
			wantOK: false,
		},
		{
			name: "indented line keeps absolute columns",
			line: "  Foo  Bar",
			want: FieldRecord{
				LeadingField:       "Foo",
				Remainder:          "Bar",
				Kind:               LineNormal,
				TrailingSpaceCount: 2,
				Boundary:           BoundaryInfo{StartIndex: 5, RunLength: 2, Found: true},
				Edge:               7,
			},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Classify(tt.line, Ellipsis)
			if ok != tt.wantOK {
				t.Fatalf("Classify(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Classify(%q) =\n  %+v\nwant\n  %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestClassify_EmptyMarkerDisablesTruncation(t *testing.T) {
	t.Parallel()

	got, ok := Classify("Visual Studio Code…  Microsoft.VSCode", "")
	if !ok {
		t.Fatal("expected line to classify")
	}
	if got.Kind != LineNormal {
		t.Errorf("Kind = %s, want normal", got.Kind)
	}
	if got.LeadingField != "Visual Studio Code…" {
		t.Errorf("LeadingField = %q", got.LeadingField)
	}
}

func TestClassify_IsTruncated(t *testing.T) {
	t.Parallel()

	rec, ok := Classify("Some App…  Some.App  1.0", Ellipsis)
	if !ok || !rec.IsTruncated() {
		t.Errorf("expected truncated record, got %+v (ok=%v)", rec, ok)
	}
	if LineTruncated.String() != "truncated" || LineNormal.String() != "normal" || LineKind(0).String() != "unknown" {
		t.Error("unexpected LineKind names")
	}
}
