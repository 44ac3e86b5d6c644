// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// ExitSuccess is the status of a command that did what was asked.
	ExitSuccess ExitCode = 0
	// ExitFailure is the generic failure status, also used for statuses a
	// process cannot report.
	ExitFailure ExitCode = 1

	maxExitCode ExitCode = 255
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is a process exit status in the POSIX range 0-255.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// FromProcess converts a child process status into an ExitCode. winget reports
// failures as HRESULTs (0x8A15xxxx) that do not fit a POSIX status; any such value
// becomes ExitFailure.
func FromProcess(status int) ExitCode {
	code := ExitCode(status)
	if code.Validate() != nil {
		return ExitFailure
	}
	return code
}

func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-%d)", e.Value, maxExitCode)
}

func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an *InvalidExitCodeError when c cannot be reported by a process.
func (c ExitCode) Validate() error {
	if c < ExitSuccess || c > maxExitCode {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess reports whether c is ExitSuccess.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// Failure returns c when it is a reportable failure status and ExitFailure
// otherwise, so an error never maps to a successful exit.
func (c ExitCode) Failure() ExitCode {
	if c.IsSuccess() || c.Validate() != nil {
		return ExitFailure
	}
	return c
}

func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
