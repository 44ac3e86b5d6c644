// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/invowk/pkgtab/internal/cache"
	"github.com/invowk/pkgtab/internal/config"
	"github.com/invowk/pkgtab/internal/issue"
	"github.com/invowk/pkgtab/internal/winget"

	"github.com/charmbracelet/log"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// App wires CLI services and shared dependencies. Cobra handlers receive an App
	// and open one session per invocation.
	App struct {
		Config ConfigProvider
		runner winget.Runner
		store  cache.Store
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		flags globalFlags
		// issueStyle is the glamour style for catalog entries; it follows ui.color_scheme
		// once a configuration has been loaded.
		issueStyle string
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		// Runner replaces the winget executable named by winget.command.
		Runner winget.Runner
		// Store replaces the on-disk result cache. It is not closed by the App.
		Store  cache.Store
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	globalFlags struct {
		configPath string
		verbose    bool
		format     string
		noCache    bool
	}

	// session holds what one command invocation needs: the effective configuration,
	// a logger and a manager bound to the runner and cache.
	session struct {
		cfg       *config.Config
		format    config.OutputFormat
		verbose   bool
		logger    *log.Logger
		manager   *winget.Manager
		store     cache.Store
		ownsStore bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{
		Config:     deps.Config,
		runner:     deps.Runner,
		store:      deps.Store,
		stdin:      deps.Stdin,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
		issueStyle: string(config.ColorSchemeAuto),
	}
}

// open loads the configuration, applies the global flags and builds the manager.
// captures maps a winget subcommand ("list" or "search") to saved output that is
// served instead of running winget; any capture bypasses the result cache.
func (a *App) open(ctx context.Context, captures map[string]string) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:     cfg,
		verbose: a.flags.verbose || cfg.UI.Verbose,
	}
	if s.format, err = a.outputFormat(cfg); err != nil {
		return nil, err
	}
	s.logger = newLogger(a.stderr, s.verbose)

	runner := a.runner
	if runner == nil {
		execRunner, err := winget.NewExecRunner(cfg.Winget.Command, cfg.Winget.Timeout)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("prepare winget command").
				WithResource("winget.command").
				WithIssue(issue.InvalidConfigValueId).
				Wrap(err).
				BuildError()
		}
		runner = execRunner
	}

	if len(captures) > 0 {
		runner = &replayRunner{captures: captures, next: runner}
		s.store = cache.Nop{}
	} else {
		s.store, s.ownsStore = a.openStore(ctx, cfg, s.logger)
	}

	s.manager = winget.NewManager(runner,
		winget.WithCache(s.store, cfg.Cache.ListTTL, cfg.Cache.SearchTTL),
		winget.WithLogger(s.logger.WithPrefix("winget")),
	)
	return s, nil
}

// openStore returns the injected store, the on-disk cache, or a no-op store when caching
// is off or the cache cannot be opened. The bool reports whether the caller must close it.
func (a *App) openStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (cache.Store, bool) {
	if a.store != nil {
		return a.store, false
	}
	if a.flags.noCache || !cfg.Cache.Enabled {
		return cache.Nop{}, false
	}

	store, err := openCacheFile(ctx, cfg, logger)
	if err != nil {
		logger.Warn("running without result cache", "error", err, "issue", int(issue.CacheUnavailableId))
		return cache.Nop{}, false
	}
	return store, true
}

func openCacheFile(ctx context.Context, cfg *config.Config, logger *log.Logger) (*cache.SQLiteStore, error) {
	dir, err := cfg.Cache.CacheDir()
	if err != nil {
		return nil, err
	}
	return cache.Open(ctx, filepath.Join(dir, cache.FileName), cache.WithLogger(logger.WithPrefix("cache")))
}

func (s *session) Close() error {
	if s.ownsStore {
		return s.store.Close()
	}
	return nil
}

func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, err
	}
	a.issueStyle = string(cfg.UI.ColorScheme)
	return cfg, nil
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.flags.configPath}
}

// outputFormat returns the --format value when given, output.format otherwise.
func (a *App) outputFormat(cfg *config.Config) (config.OutputFormat, error) {
	if a.flags.format == "" {
		return cfg.Output.Format, nil
	}
	format := config.OutputFormat(a.flags.format)
	if valid, errs := format.IsValid(); !valid {
		return "", issue.NewErrorContext().
			WithOperation("select output format").
			WithResource("--format").
			WithIssue(issue.InvalidConfigValueId).
			Wrap(errs[0]).
			BuildError()
	}
	return format, nil
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "pkgtab", Level: log.WarnLevel})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// readInput reads a saved capture; "-" reads standard input.
func (a *App) readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("read input").
			WithResource(path).
			WithIssue(issue.InputNotReadableId).
			Wrap(err).
			BuildError()
	}
	return string(data), nil
}

// captureFrom returns the captures map for a command's --input flag, or nil when the
// flag is empty.
func (a *App) captureFrom(subcommand, path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := a.readInput(path)
	if err != nil {
		return nil, err
	}
	return map[string]string{subcommand: raw}, nil
}

// replayRunner answers winget invocations from saved captures, keyed by subcommand,
// and hands anything else to next.
type replayRunner struct {
	captures map[string]string
	next     winget.Runner
}

func (r *replayRunner) Run(ctx context.Context, args ...string) (string, error) {
	if len(args) > 0 {
		if out, ok := r.captures[args[0]]; ok {
			return out, nil
		}
	}
	if r.next == nil {
		return "", fmt.Errorf("%w: no capture for %q", winget.ErrWingetNotFound, args)
	}
	return r.next.Run(ctx, args...)
}
