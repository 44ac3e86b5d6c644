// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"context"
	"time"
)

const (
	// KindList holds "winget list" captures.
	KindList Kind = "list"
	// KindSearch holds "winget search" captures, keyed by search term.
	KindSearch Kind = "search"
)

type (
	// Kind groups entries so one kind can be invalidated without touching the others.
	Kind string

	// Store is a TTL-checked key/value store for captured winget output.
	Store interface {
		// Get returns the payload stored for (kind, key) when it is younger than maxAge.
		// A non-positive maxAge always misses.
		Get(ctx context.Context, kind Kind, key string, maxAge time.Duration) ([]byte, bool, error)
		// Put stores payload for (kind, key), replacing any previous entry.
		Put(ctx context.Context, kind Kind, key string, payload []byte) error
		// Delete removes every entry of kind.
		Delete(ctx context.Context, kind Kind) error
		// Clear removes every entry and returns how many were removed.
		Clear(ctx context.Context) (int64, error)
		Close() error
	}

	// Clock supplies the current time for entry ages.
	Clock interface {
		Now() time.Time
	}

	// Nop is a Store that never holds anything. It is used when caching is disabled or
	// the database cannot be opened.
	Nop struct{}

	systemClock struct{}
)

func (systemClock) Now() time.Time { return time.Now() }

func (Nop) Get(context.Context, Kind, string, time.Duration) ([]byte, bool, error) {
	return nil, false, nil
}

func (Nop) Put(context.Context, Kind, string, []byte) error { return nil }

func (Nop) Delete(context.Context, Kind) error { return nil }

func (Nop) Clear(context.Context) (int64, error) { return 0, nil }

func (Nop) Close() error { return nil }
