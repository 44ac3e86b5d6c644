// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/invowk/pkgtab/internal/issue"
	"github.com/invowk/pkgtab/internal/winget"
	"github.com/invowk/pkgtab/pkg/tabparse"

	"github.com/charmbracelet/log"
)

// wingetError attaches the catalog entry that explains a failed winget call.
// Caller mistakes such as a blank search term pass through unchanged.
func wingetError(err error, operation, resource string) error {
	if err == nil || errors.Is(err, tabparse.ErrInvalidArgument) || errors.Is(err, context.Canceled) {
		return err
	}

	ec := issue.NewErrorContext().WithOperation(operation).WithResource(resource).Wrap(err)
	var runErr *winget.RunError
	switch {
	case errors.Is(err, winget.ErrWingetNotFound):
		ec.WithIssue(issue.WingetNotFoundId).
			WithSuggestion("Pass --input to parse a saved capture instead")
	case errors.Is(err, context.DeadlineExceeded):
		ec.WithIssue(issue.CaptureFailedId).
			WithSuggestion("Raise winget.timeout in the configuration")
	case errors.As(err, &runErr) && len(runErr.Args) > 0 && runErr.Args[0] == "install":
		ec.WithIssue(issue.InstallFailedId)
	default:
		ec.WithIssue(issue.CaptureFailedId)
	}
	return ec.BuildError()
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors use their Format method, which adds the cause chain in verbose mode.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderError prints err and, for catalogued errors, the matching help entry.
func renderError(w io.Writer, err error, verbose bool, style string) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return
	}
	entry := ae.CatalogIssue()
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(style)
	if renderErr != nil {
		log.Warn("failed to render issue catalog entry", "issue", int(entry.Id()), "error", renderErr)
		return
	}
	fmt.Fprint(w, rendered)
}
