// SPDX-License-Identifier: MPL-2.0

package winget

import (
	"context"
	"errors"
	"strings"

	"github.com/invowk/pkgtab/internal/cache"
	"github.com/invowk/pkgtab/pkg/tabparse"
)

// DefaultSourceName is the name winget gives its community repository.
const DefaultSourceName = "winget"

// Sources returns the raw `winget source list` table.
func (m *Manager) Sources(ctx context.Context) (string, error) {
	return m.runner.Run(ctx, "source", "list")
}

// ConfigureSource points the source called name at url, trusting it. It reports false
// without touching winget when a configured source already uses url. A successful change
// drops cached searches, since they were answered by the old source.
func (m *Manager) ConfigureSource(ctx context.Context, name, url string) (bool, error) {
	name, url = strings.TrimSpace(name), strings.TrimSpace(url)
	if name == "" {
		return false, &tabparse.InvalidArgumentError{Arg: "name", Reason: "must not be blank"}
	}
	if url == "" {
		return false, &tabparse.InvalidArgumentError{Arg: "url", Reason: "must not be blank"}
	}

	current, err := m.Sources(ctx)
	if err != nil {
		return false, err
	}
	if sourceListed(current, url) {
		m.logger.Debug("source already configured", "name", name, "url", url)
		return false, nil
	}

	// Removing a source that does not exist fails; the add below is what matters.
	if _, err := m.runner.Run(ctx, "source", "remove", name); err != nil {
		var runErr *RunError
		if !errors.As(err, &runErr) {
			return false, err
		}
		m.logger.Debug("source remove failed", "name", name, "code", runErr.ExitCode)
	}
	if _, err := m.runner.Run(ctx, "source", "add", name, url, "--trust-level", "trusted"); err != nil {
		return false, err
	}

	if err := m.store.Delete(ctx, cache.KindSearch); err != nil {
		m.logger.Warn("cache invalidation failed", "error", err)
	}
	m.logger.Info("source configured", "name", name, "url", url)
	return true, nil
}

// sourceListed reports whether the `source list` output mentions url, ignoring case
// and a trailing slash.
func sourceListed(list, url string) bool {
	needle := strings.ToLower(strings.TrimRight(url, "/"))
	return needle != "" && strings.Contains(strings.ToLower(list), needle)
}
