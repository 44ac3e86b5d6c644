// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/invowk/pkgtab/internal/issue"
	"github.com/invowk/pkgtab/internal/winget"
	"github.com/invowk/pkgtab/pkg/tabparse"
)

func TestWingetError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"missing binary", fmt.Errorf("%w: winget", winget.ErrWingetNotFound), issue.WingetNotFoundId},
		{"timeout", fmt.Errorf("winget list timed out: %w", context.DeadlineExceeded), issue.CaptureFailedId},
		{"list exit status", &winget.RunError{Args: []string{"list"}, ExitCode: 2}, issue.CaptureFailedId},
		{"install exit status", &winget.RunError{Args: []string{"install", "--id", "x"}, ExitCode: 2}, issue.InstallFailedId},
		{"empty args", &winget.RunError{ExitCode: 2}, issue.CaptureFailedId},
		{"unknown", errors.New("pipe closed"), issue.CaptureFailedId},
	}
	for _, tt := range tests {
		err := wingetError(tt.err, "list installed packages", "winget list")
		var ae *issue.ActionableError
		if !errors.As(err, &ae) {
			t.Errorf("%s: got %T, want *issue.ActionableError", tt.name, err)
			continue
		}
		if ae.Issue != tt.want {
			t.Errorf("%s: issue = %d, want %d", tt.name, ae.Issue, tt.want)
		}
		if !errors.Is(err, tt.err) {
			t.Errorf("%s: cause lost", tt.name)
		}
	}
}

func TestWingetError_PassThrough(t *testing.T) {
	t.Parallel()

	if wingetError(nil, "op", "res") != nil {
		t.Error("nil should stay nil")
	}
	argErr := &tabparse.InvalidArgumentError{Arg: "term", Reason: "must not be blank"}
	if got := wingetError(argErr, "op", "res"); got != error(argErr) {
		t.Errorf("invalid argument should pass through, got %v", got)
	}
	if got := wingetError(context.Canceled, "op", "res"); got != context.Canceled {
		t.Errorf("cancellation should pass through, got %v", got)
	}
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	t.Run("quiet exit", func(t *testing.T) {
		t.Parallel()
		var sb strings.Builder
		renderError(&sb, &ExitError{Code: 1}, false, "notty")
		if sb.Len() != 0 {
			t.Errorf("quiet exit printed %q", sb.String())
		}
	})

	t.Run("plain error", func(t *testing.T) {
		t.Parallel()
		var sb strings.Builder
		renderError(&sb, errors.New("boom"), false, "notty")
		if !strings.Contains(sb.String(), "Error:") || !strings.Contains(sb.String(), "boom") {
			t.Errorf("output = %q", sb.String())
		}
	})

	t.Run("catalogued error", func(t *testing.T) {
		t.Parallel()
		var sb strings.Builder
		err := wingetError(winget.ErrWingetNotFound, "list installed packages", "winget list")
		renderError(&sb, err, true, "notty")
		out := sb.String()
		for _, want := range []string{
			"failed to list installed packages: winget list",
			"Pass --input to parse a saved capture instead",
			"Error chain:",
			"winget not found!",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}
