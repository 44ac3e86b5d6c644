// SPDX-License-Identifier: MPL-2.0

package winget

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"mvdan.cc/sh/v3/shell"
)

// ErrWingetNotFound is returned when the configured winget executable cannot be started.
var ErrWingetNotFound = errors.New("winget executable not found")

type (
	// Runner captures the standard output of one winget invocation.
	Runner interface {
		Run(ctx context.Context, args ...string) (string, error)
	}

	// ExecRunner runs winget as a child process.
	ExecRunner struct {
		argv    []string
		timeout time.Duration
	}

	// RunError reports a winget process that exited non-zero. Output holds whatever it
	// printed before exiting, which for "no results" is still a readable table header.
	RunError struct {
		Args     []string
		ExitCode int
		Output   string
		Stderr   string
	}
)

// NewExecRunner splits command with shell quoting rules (so "wsl.exe winget.exe" or
// a quoted path with spaces both work) and bounds each run by timeout when positive.
func NewExecRunner(command string, timeout time.Duration) (*ExecRunner, error) {
	argv, err := shell.Fields(command, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("invalid winget command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("invalid winget command %q: no executable", command)
	}
	return &ExecRunner{argv: argv, timeout: timeout}, nil
}

// Argv returns the command prefix every run starts with.
func (r *ExecRunner) Argv() []string {
	return append([]string(nil), r.argv...)
}

func (r *ExecRunner) Run(ctx context.Context, args ...string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	full := append(append([]string(nil), r.argv[1:]...), args...)
	cmd := exec.CommandContext(ctx, r.argv[0], full...)
	// Grandchildren may hold the pipes open after a kill.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := stdout.String()
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %s", ErrWingetNotFound, r.argv[0])
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return out, fmt.Errorf("winget %s timed out after %s: %w", strings.Join(args, " "), r.timeout, context.DeadlineExceeded)
	case ctx.Err() != nil:
		return out, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, &RunError{Args: args, ExitCode: exitErr.ExitCode(), Output: out, Stderr: stderr.String()}
	}
	return out, fmt.Errorf("failed to run winget: %w", err)
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("winget %s exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}
