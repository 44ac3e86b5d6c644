// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// OutputTable renders a styled terminal table.
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
	OutputYAML  OutputFormat = "yaml"
	OutputTOML  OutputFormat = "toml"

	// RankRelevance orders search results by exact id, then name match position.
	RankRelevance RankMode = "relevance"
	// RankScore orders search results by keyword score, then version quality.
	RankScore RankMode = "score"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidRankMode is returned when a RankMode value is not recognized.
	ErrInvalidRankMode = errors.New("invalid rank mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidCommand is returned when the winget command line is blank.
	ErrInvalidCommand = errors.New("invalid winget command")
	// ErrInvalidDuration is returned when a timeout or TTL is out of range.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// OutputFormat selects how command results are printed.
	OutputFormat string

	// InvalidOutputFormatError wraps ErrInvalidOutputFormat.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// RankMode selects the search result ordering.
	RankMode string

	// InvalidRankModeError wraps ErrInvalidRankMode.
	InvalidRankModeError struct {
		Value RankMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError wraps ErrInvalidColorScheme.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidCommandError wraps ErrInvalidCommand.
	InvalidCommandError struct {
		Value string
	}

	// InvalidDurationError wraps ErrInvalidDuration. Field is the dotted config key.
	InvalidDurationError struct {
		Field string
		Value time.Duration
	}

	// InvalidConfigError collects every field error found in a Config.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		Winget WingetConfig `json:"winget" yaml:"winget" toml:"winget" mapstructure:"winget"`
		Cache  CacheConfig  `json:"cache" yaml:"cache" toml:"cache" mapstructure:"cache"`
		Output OutputConfig `json:"output" yaml:"output" toml:"output" mapstructure:"output"`
		Search SearchConfig `json:"search" yaml:"search" toml:"search" mapstructure:"search"`
		UI     UIConfig     `json:"ui" yaml:"ui" toml:"ui" mapstructure:"ui"`
	}

	// WingetConfig configures how the winget executable is started.
	WingetConfig struct {
		// Command is a shell-style command line; extra words are prepended to every call.
		Command string `json:"command" yaml:"command" toml:"command" mapstructure:"command"`
		// Timeout bounds a single winget invocation.
		Timeout time.Duration `json:"timeout" yaml:"timeout" toml:"timeout" mapstructure:"timeout"`
	}

	// CacheConfig configures the parsed-result cache.
	CacheConfig struct {
		Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled" mapstructure:"enabled"`
		// Dir overrides the cache directory. Empty means the user cache directory.
		Dir string `json:"dir" yaml:"dir" toml:"dir" mapstructure:"dir"`
		// ListTTL is how long an installed-package listing stays fresh.
		ListTTL time.Duration `json:"list_ttl" yaml:"list_ttl" toml:"list_ttl" mapstructure:"list_ttl"`
		// SearchTTL is how long a search result stays fresh.
		SearchTTL time.Duration `json:"search_ttl" yaml:"search_ttl" toml:"search_ttl" mapstructure:"search_ttl"`
	}

	OutputConfig struct {
		Format OutputFormat `json:"format" yaml:"format" toml:"format" mapstructure:"format"`
	}

	SearchConfig struct {
		Rank RankMode `json:"rank" yaml:"rank" toml:"rank" mapstructure:"rank"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" yaml:"color_scheme" toml:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" yaml:"verbose" toml:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the configuration used when no file or environment overrides it.
func DefaultConfig() *Config {
	return &Config{
		Winget: WingetConfig{
			Command: "winget",
			Timeout: 2 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled:   true,
			ListTTL:   5 * time.Second,
			SearchTTL: 30 * time.Minute,
		},
		Output: OutputConfig{Format: OutputTable},
		Search: SearchConfig{Rank: RankRelevance},
		UI:     UIConfig{ColorScheme: ColorSchemeAuto},
	}
}

// IsValid returns whether the Config has valid fields, collecting every field error.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Winget.Command) == "" {
		errs = append(errs, &InvalidCommandError{Value: c.Winget.Command})
	}
	if c.Winget.Timeout <= 0 {
		errs = append(errs, &InvalidDurationError{Field: "winget.timeout", Value: c.Winget.Timeout})
	}
	if c.Cache.ListTTL < 0 {
		errs = append(errs, &InvalidDurationError{Field: "cache.list_ttl", Value: c.Cache.ListTTL})
	}
	if c.Cache.SearchTTL < 0 {
		errs = append(errs, &InvalidDurationError{Field: "cache.search_ttl", Value: c.Cache.SearchTTL})
	}
	if valid, fieldErrs := c.Output.Format.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Search.Rank.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

func (f OutputFormat) String() string { return string(f) }

// IsValid returns whether the OutputFormat is one of the defined formats.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case OutputTable, OutputJSON, OutputYAML, OutputTOML:
		return true, nil
	default:
		return false, []error{&InvalidOutputFormatError{Value: f}}
	}
}

func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: table, json, yaml, toml)", e.Value)
}

// Unwrap returns ErrInvalidOutputFormat for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

func (m RankMode) String() string { return string(m) }

// IsValid returns whether the RankMode is one of the defined modes.
func (m RankMode) IsValid() (bool, []error) {
	switch m {
	case RankRelevance, RankScore:
		return true, nil
	default:
		return false, []error{&InvalidRankModeError{Value: m}}
	}
}

func (e *InvalidRankModeError) Error() string {
	return fmt.Sprintf("invalid rank mode %q (valid: relevance, score)", e.Value)
}

// Unwrap returns ErrInvalidRankMode for errors.Is() compatibility.
func (e *InvalidRankModeError) Unwrap() error { return ErrInvalidRankMode }

func (c ColorScheme) String() string { return string(c) }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

func (e *InvalidCommandError) Error() string {
	return fmt.Sprintf("invalid winget command %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidCommand for errors.Is() compatibility.
func (e *InvalidCommandError) Unwrap() error { return ErrInvalidCommand }

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration %s for %s", e.Value, e.Field)
}

// Unwrap returns ErrInvalidDuration for errors.Is() compatibility.
func (e *InvalidDurationError) Unwrap() error { return ErrInvalidDuration }
