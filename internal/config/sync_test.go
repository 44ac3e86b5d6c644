// SPDX-License-Identifier: MPL-2.0

package config

import (
	"reflect"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// These tests keep the Go struct JSON tags and the CUE schema field names in step, so a
// renamed key fails CI instead of being silently ignored at load time.

func cueFields(t *testing.T, def string) map[string]bool {
	t.Helper()

	schema := cuecontext.New().CompileString(configSchema)
	if schema.Err() != nil {
		t.Fatalf("failed to compile CUE schema: %v", schema.Err())
	}
	val := schema.LookupPath(cue.ParsePath(def))
	if val.Err() != nil {
		t.Fatalf("failed to lookup CUE definition %s: %v", def, val.Err())
	}

	iter, err := val.Fields(cue.Definitions(false), cue.Optional(true))
	if err != nil {
		t.Fatalf("failed to iterate CUE fields: %v", err)
	}
	fields := make(map[string]bool)
	for iter.Next() {
		sel := iter.Selector()
		if sel.LabelType().IsHidden() || sel.IsDefinition() {
			continue
		}
		fields[strings.TrimSuffix(sel.String(), "?")] = true
	}
	return fields
}

func goJSONFields(t *testing.T, typ reflect.Type) map[string]bool {
	t.Helper()

	fields := make(map[string]bool)
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = true
	}
	return fields
}

func TestSchemaSync(t *testing.T) {
	tests := []struct {
		def string
		typ reflect.Type
	}{
		{"#Config", reflect.TypeFor[Config]()},
		{"#WingetConfig", reflect.TypeFor[WingetConfig]()},
		{"#CacheConfig", reflect.TypeFor[CacheConfig]()},
		{"#OutputConfig", reflect.TypeFor[OutputConfig]()},
		{"#SearchConfig", reflect.TypeFor[SearchConfig]()},
		{"#UIConfig", reflect.TypeFor[UIConfig]()},
	}

	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			fromCUE := cueFields(t, tt.def)
			fromGo := goJSONFields(t, tt.typ)
			for f := range fromCUE {
				if !fromGo[f] {
					t.Errorf("CUE field %q not found in %s JSON tags", f, tt.typ.Name())
				}
			}
			for f := range fromGo {
				if !fromCUE[f] {
					t.Errorf("Go JSON tag %q of %s not found in %s", f, tt.typ.Name(), tt.def)
				}
			}
		})
	}
}
