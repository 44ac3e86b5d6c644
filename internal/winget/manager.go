// SPDX-License-Identifier: MPL-2.0

package winget

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/invowk/pkgtab/internal/cache"
	"github.com/invowk/pkgtab/pkg/tabparse"

	"github.com/charmbracelet/log"
)

// ErrNoMatch is returned by InstallByKeyword when winget finds no package for the keywords.
var ErrNoMatch = errors.New("no package matches the keywords")

type (
	// Manager answers package questions by running winget through a Runner and
	// parsing the captured tables. Captures are cached per kind with their own TTL.
	Manager struct {
		runner    Runner
		store     cache.Store
		listTTL   time.Duration
		searchTTL time.Duration
		logger    *log.Logger

		// Set by an install so the next listing skips the cache even if the
		// store could not be purged.
		justInstalled atomic.Bool
	}

	// Option configures a Manager.
	Option func(*Manager)

	// Capture is one raw winget output and where it came from.
	Capture struct {
		Output string
		Cached bool
	}
)

// WithCache stores captures in store; listTTL and searchTTL bound their freshness.
func WithCache(store cache.Store, listTTL, searchTTL time.Duration) Option {
	return func(m *Manager) {
		m.store = store
		m.listTTL = listTTL
		m.searchTTL = searchTTL
	}
}

// WithLogger sets the logger for cache and winget diagnostics. Without it the
// Manager logs nothing.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a Manager without caching unless WithCache is given.
func NewManager(runner Runner, opts ...Option) *Manager {
	m := &Manager{runner: runner, store: cache.Nop{}, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CaptureList returns the output of `winget list`, from the cache when fresh.
func (m *Manager) CaptureList(ctx context.Context) (Capture, error) {
	useCache := !m.justInstalled.Load()
	c, err := m.capture(ctx, cache.KindList, "", m.listTTL, useCache, "list")
	if err == nil {
		m.justInstalled.Store(false)
	}
	return c, err
}

// CaptureSearch returns the output of `winget search <term>`, from the cache when fresh.
func (m *Manager) CaptureSearch(ctx context.Context, term string) (Capture, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Capture{}, &tabparse.InvalidArgumentError{Arg: "term", Reason: "must not be blank"}
	}
	return m.capture(ctx, cache.KindSearch, term, m.searchTTL, true, "search", term)
}

func (m *Manager) capture(ctx context.Context, kind cache.Kind, key string, ttl time.Duration, useCache bool, args ...string) (Capture, error) {
	if useCache {
		payload, ok, err := m.store.Get(ctx, kind, key, ttl)
		switch {
		case err != nil:
			m.logger.Warn("cache read failed", "kind", kind, "key", key, "error", err)
		case ok:
			m.logger.Debug("using cached capture", "kind", kind, "key", key)
			return Capture{Output: string(payload), Cached: true}, nil
		}
	}

	m.logger.Debug("running winget", "args", args)
	out, err := m.runner.Run(ctx, args...)
	if err != nil {
		// winget exits non-zero when nothing matches but still prints a table.
		var runErr *RunError
		if errors.As(err, &runErr) && strings.TrimSpace(out) != "" {
			m.logger.Debug("tolerating winget exit status", "code", runErr.ExitCode)
			return Capture{Output: out}, nil
		}
		return Capture{}, err
	}

	if err := m.store.Put(ctx, kind, key, []byte(out)); err != nil {
		m.logger.Warn("cache write failed", "kind", kind, "key", key, "error", err)
	}
	return Capture{Output: out}, nil
}

// List returns the installed packages.
func (m *Manager) List(ctx context.Context) ([]tabparse.PackageRecord, error) {
	c, err := m.CaptureList(ctx)
	if err != nil {
		return nil, err
	}
	pkgs := tabparse.ParseInstalledPackages(c.Output)
	m.logger.Debug("parsed installed packages", "count", len(pkgs), "cached", c.Cached)
	return pkgs, nil
}

// Search returns the packages matching term, ordered by tabparse.Rank.
func (m *Manager) Search(ctx context.Context, term string) ([]tabparse.SearchRecord, error) {
	c, err := m.CaptureSearch(ctx, term)
	if err != nil {
		return nil, err
	}
	results := tabparse.ParseSearchResults(c.Output, term)
	m.logger.Debug("parsed search results", "term", term, "count", len(results), "cached", c.Cached)
	return results, nil
}

// SearchWithPriority searches winget for the first of the comma-separated keywords
// and orders the results by tabparse.ScoreRank over all of them.
func (m *Manager) SearchWithPriority(ctx context.Context, keywords string) ([]tabparse.SearchRecord, error) {
	kws := tabparse.NormalizeKeywords(keywords)
	if len(kws) == 0 {
		return nil, &tabparse.InvalidArgumentError{Arg: "keywords", Reason: "must contain at least one keyword"}
	}
	results, err := m.Search(ctx, kws[0])
	if err != nil {
		return nil, err
	}
	return tabparse.ScoreRank(results, kws), nil
}

// BestMatch returns the top SearchWithPriority result. The bool is false when winget
// found nothing.
func (m *Manager) BestMatch(ctx context.Context, keywords string) (tabparse.SearchRecord, bool, error) {
	results, err := m.SearchWithPriority(ctx, keywords)
	if err != nil || len(results) == 0 {
		return tabparse.SearchRecord{}, false, err
	}
	best := results[0]
	m.logger.Info("best match", "name", best.Name, "id", best.ID, "version", best.Version,
		"score", tabparse.MatchScore(best, tabparse.NormalizeKeywords(keywords)))
	return best, true, nil
}

// IsInstalled reports whether any search result for term corresponds to an installed
// package: one id must contain the other, ignoring case.
func (m *Manager) IsInstalled(ctx context.Context, term string) (bool, error) {
	results, err := m.Search(ctx, term)
	if err != nil || len(results) == 0 {
		return false, err
	}
	installed, err := m.List(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range results {
		for _, p := range installed {
			if idsOverlap(r.ID, p.ID) {
				m.logger.Debug("installed package matches", "search", r.ID, "installed", p.ID)
				return true, nil
			}
		}
	}
	return false, nil
}

// Empty ids are skipped since every string contains "".
func idsOverlap(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Install runs a silent, non-interactive install of the exact package id, optionally
// into location, and invalidates the installed-package cache.
func (m *Manager) Install(ctx context.Context, id, location string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", &tabparse.InvalidArgumentError{Arg: "id", Reason: "must not be blank"}
	}
	args := []string{
		"install",
		"--accept-source-agreements",
		"--accept-package-agreements",
		"--id", id,
		"--silent",
		"--force",
	}
	if location != "" {
		args = append(args, "--location", location)
	}

	m.logger.Info("installing package", "id", id)
	out, err := m.runner.Run(ctx, args...)
	m.Invalidate(ctx)
	return out, err
}

// InstallByKeyword installs the BestMatch for keywords and returns the record it chose
// along with winget's output. It fails with ErrNoMatch when the search is empty.
func (m *Manager) InstallByKeyword(ctx context.Context, keywords, location string) (tabparse.SearchRecord, string, error) {
	best, ok, err := m.BestMatch(ctx, keywords)
	if err != nil {
		return tabparse.SearchRecord{}, "", err
	}
	if !ok {
		return tabparse.SearchRecord{}, "", ErrNoMatch
	}
	out, err := m.Install(ctx, best.ID, location)
	return best, out, err
}

// Invalidate drops cached listings so the next List runs winget again.
func (m *Manager) Invalidate(ctx context.Context) {
	m.justInstalled.Store(true)
	if err := m.store.Delete(ctx, cache.KindList); err != nil {
		m.logger.Warn("cache invalidation failed", "error", err)
	}
}
