// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers shared across packages: a fake clock for
// TTL-driven code, environment and home directory overrides, and fixture loading.
package testutil
