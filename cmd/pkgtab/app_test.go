// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/invowk/pkgtab/internal/cache"
	"github.com/invowk/pkgtab/internal/config"
	"github.com/invowk/pkgtab/internal/issue"
	"github.com/invowk/pkgtab/internal/testutil"
	"github.com/invowk/pkgtab/internal/winget"
)

type (
	fakeRunner struct {
		mu      sync.Mutex
		outputs map[string]string
		errs    map[string]error
		calls   []string
	}

	staticConfig struct {
		cfg *config.Config
		err error
	}
)

func newFakeRunner(t *testing.T) *fakeRunner {
	t.Helper()
	search := testutil.MustReadFixture(t, "search.txt")
	return &fakeRunner{
		outputs: map[string]string{
			"list":          testutil.MustReadFixture(t, "list.txt"),
			"search vscode": search,
			"search code":   search,
			"search nothing": "Name  Id  Version\n" +
				"-----------------\n",
			"search codium": "Name      Id                 Version\n" +
				"------------------------------------\n" +
				"VSCodium  VSCodium.VSCodium  1.85.1\n",
		},
		errs: map[string]error{},
	}
}

func (f *fakeRunner) Run(_ context.Context, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	return f.outputs[key], f.errs[key]
}

func (f *fakeRunner) called(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (s staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg := *s.cfg
	return &cfg, nil
}

// runCLI executes the command tree in-process. Unset dependencies default to the
// built-in configuration and a disabled cache.
func runCLI(t *testing.T, deps Dependencies, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	deps.Stdout, deps.Stderr = &out, &errOut
	if deps.Config == nil {
		deps.Config = staticConfig{cfg: config.DefaultConfig()}
	}
	if deps.Store == nil {
		deps.Store = cache.Nop{}
	}
	if deps.Stdin == nil {
		deps.Stdin = strings.NewReader("")
	}

	root := newRootCommand(NewApp(deps))
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func issueOf(t *testing.T, err error) issue.Id {
	t.Helper()
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *issue.ActionableError, got %T: %v", err, err)
	}
	return ae.Issue
}

func TestNewApp_Defaults(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{})
	if app.Config == nil || app.stdin != os.Stdin || app.stdout != os.Stdout || app.stderr != os.Stderr {
		t.Errorf("NewApp() did not fill defaults: %+v", app)
	}
	if app.issueStyle != "auto" {
		t.Errorf("issueStyle = %q, want auto", app.issueStyle)
	}
}

func TestApp_OpenRejectsBadFormatFlag(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, Dependencies{Runner: newFakeRunner(t)}, "list", "--format", "xml")
	if err == nil {
		t.Fatal("expected an error for --format xml")
	}
	if got := issueOf(t, err); got != issue.InvalidConfigValueId {
		t.Errorf("issue = %d, want InvalidConfigValueId", got)
	}
	if !errors.Is(err, config.ErrInvalidOutputFormat) {
		t.Errorf("error should wrap ErrInvalidOutputFormat: %v", err)
	}
}

func TestApp_ConfigErrorStopsCommand(t *testing.T) {
	t.Parallel()

	boom := errors.New("broken config")
	r := newFakeRunner(t)
	_, _, err := runCLI(t, Dependencies{Config: staticConfig{err: boom}, Runner: r}, "list")
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want the config error", err)
	}
	if r.called("list") {
		t.Error("winget should not run when the configuration fails to load")
	}
}

func TestApp_UsesOnDiskCache(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Cache.Dir = t.TempDir()
	cfg.Cache.ListTTL = config.DefaultConfig().Cache.SearchTTL
	r := newFakeRunner(t)

	app := NewApp(Dependencies{Config: staticConfig{cfg: cfg}, Runner: r, Stdout: io.Discard, Stderr: io.Discard})
	for range 2 {
		root := newRootCommand(app)
		root.SetArgs([]string{"list", "--format", "json"})
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("list failed: %v", err)
		}
	}

	count := 0
	for _, c := range r.calls {
		if c == "list" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("winget list ran %d times, want 1 (second run cached)", count)
	}
	if _, err := os.Stat(filepath.Join(cfg.Cache.Dir, cache.FileName)); err != nil {
		t.Errorf("cache database not created: %v", err)
	}
}

func TestApp_NoCacheFlag(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")
	app := NewApp(Dependencies{Config: staticConfig{cfg: cfg}, Runner: newFakeRunner(t), Stdout: io.Discard, Stderr: io.Discard})

	root := newRootCommand(app)
	root.SetArgs([]string{"list", "--no-cache"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if _, err := os.Stat(cfg.Cache.Dir); !os.IsNotExist(err) {
		t.Errorf("--no-cache should not create the cache directory, stat err = %v", err)
	}
}

func TestReplayRunner(t *testing.T) {
	t.Parallel()

	next := newFakeRunner(t)
	r := &replayRunner{captures: map[string]string{"list": "saved"}, next: next}

	out, err := r.Run(context.Background(), "list")
	if err != nil || out != "saved" {
		t.Errorf("Run(list) = (%q, %v), want the capture", out, err)
	}
	if _, err := r.Run(context.Background(), "search", "code"); err != nil || !next.called("search code") {
		t.Errorf("Run(search) should fall through to next, err = %v", err)
	}

	orphan := &replayRunner{captures: map[string]string{}}
	if _, err := orphan.Run(context.Background(), "list"); !errors.Is(err, winget.ErrWingetNotFound) {
		t.Errorf("Run() without next = %v, want ErrWingetNotFound", err)
	}
}

func TestReadInput_MissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, Dependencies{Runner: newFakeRunner(t)}, "list", "--input", filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("expected an error for a missing input file")
	}
	if got := issueOf(t, err); got != issue.InputNotReadableId {
		t.Errorf("issue = %d, want InputNotReadableId", got)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
}
