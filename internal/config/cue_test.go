// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"cache", "list_ttl"}, "cache.list_ttl"},
		{[]string{"items", "0", "name"}, "items[0].name"},
		{[]string{"0"}, "0"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFormatCUEError_PlainError(t *testing.T) {
	t.Parallel()

	if formatCUEError(nil, "config.cue") != nil {
		t.Error("nil error should stay nil")
	}
	err := formatCUEError(errors.New("disk on fire"), "config.cue")
	if err == nil || err.Error() != "config.cue: disk on fire" {
		t.Errorf("formatCUEError() = %v", err)
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := checkFileSize(make([]byte, 10), 10, "a.cue"); err != nil {
		t.Errorf("file at the limit should pass, got %v", err)
	}
	if err := checkFileSize(make([]byte, 11), 10, "a.cue"); err == nil {
		t.Error("file over the limit should fail")
	}
}
