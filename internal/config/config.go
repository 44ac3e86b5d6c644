// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/invowk/pkgtab/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "pkgtab"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. PKGTAB_OUTPUT_FORMAT.
	EnvPrefix = "PKGTAB"

	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the pkgtab configuration directory under the platform's user
// config directory: %AppData% on Windows, ~/Library/Application Support on macOS and
// $XDG_CONFIG_HOME (or ~/.config) elsewhere.
//
//nolint:revive // config.ConfigDir reads better than config.Dir at call sites
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// CacheDir resolves the result cache directory: the configured Dir when set, otherwise
// the pkgtab directory under the user cache directory.
func (c CacheConfig) CacheDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// ResolvePath returns the config file Load would read for opts. The second result is
// false when that file does not exist and defaults apply.
func ResolvePath(opts LoadOptions) (string, bool, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, fileExists(opts.ConfigFilePath), nil
	}
	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", false, err
	}
	cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	return cuePath, fileExists(cuePath), nil
}

// loadWithOptions layers defaults, the CUE file and PKGTAB_* variables, in that order of
// increasing precedence, and returns the validated result with the file path it read
// (empty when defaults applied).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, exists, err := ResolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if !exists && opts.ConfigFilePath != "" {
		return nil, "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Check the --config path").
			WithSuggestion("Run 'pkgtab config init' to write the defaults").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(fmt.Errorf("config file not found: %s", path)).
			BuildError()
	}
	if !exists {
		path = ""
	} else {
		values, err := decodeCUEFile(path)
		if err == nil {
			err = v.MergeConfigMap(values)
		}
		if err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("parse configuration").
				WithResource(path).
				WithSuggestion("Run 'pkgtab config dump' to see a valid file").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("decode configuration").
			WithResource(path).
			WithSuggestion("Check the " + EnvPrefix + "_* environment variables").
			WithIssue(issue.InvalidConfigValueId).
			Wrap(err).
			BuildError()
	}
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithIssue(issue.InvalidConfigValueId).
			Wrap(errs[0]).
			BuildError()
	}
	return &cfg, path, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	for key, value := range map[string]any{
		"winget.command":   defaults.Winget.Command,
		"winget.timeout":   defaults.Winget.Timeout,
		"cache.enabled":    defaults.Cache.Enabled,
		"cache.dir":        defaults.Cache.Dir,
		"cache.list_ttl":   defaults.Cache.ListTTL,
		"cache.search_ttl": defaults.Cache.SearchTTL,
		"output.format":    string(defaults.Output.Format),
		"search.rank":      string(defaults.Search.Rank),
		"ui.color_scheme":  string(defaults.UI.ColorScheme),
		"ui.verbose":       defaults.UI.Verbose,
	} {
		v.SetDefault(key, value)
	}
}

func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// decodeCUEFile compiles path, unifies it with #Config and decodes the result. Every
// field is optional, so the unified value is checked without requiring concreteness.
func decodeCUEFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := checkFileSize(data, maxConfigFileSize, path); err != nil {
		return nil, err
	}

	cctx := cuecontext.New()
	schema := cctx.CompileString(configSchema).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("internal error: config schema: %w", err)
	}
	user := cctx.CompileBytes(data, cue.Filename(path))
	if err := user.Err(); err != nil {
		return nil, formatCUEError(err, path)
	}
	unified := schema.Unify(user)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, formatCUEError(err, path)
	}

	var values map[string]any
	if err := unified.Decode(&values); err != nil {
		return nil, formatCUEError(err, path)
	}
	return values, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CreateDefaultConfig writes the default config file into the config directory
// resolved from opts unless one already exists. It returns the file path and whether
// it was written.
func CreateDefaultConfig(opts LoadOptions) (string, bool, error) {
	path, exists, err := ResolvePath(opts)
	if err != nil {
		return "", false, err
	}
	if exists {
		return path, false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return path, true, nil
}

// GenerateCUE renders cfg as a config.cue file that loads back to the same values.
// An empty cache.dir is left out so the platform default keeps applying.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder
	sb.WriteString("// pkgtab configuration file\n")

	section := func(name string, fields ...string) {
		fmt.Fprintf(&sb, "\n%s: {\n", name)
		for i := 0; i+1 < len(fields); i += 2 {
			fmt.Fprintf(&sb, "\t%s: %s\n", fields[i], fields[i+1])
		}
		sb.WriteString("}\n")
	}
	quote := strconv.Quote

	section("winget",
		"command", quote(cfg.Winget.Command),
		"timeout", quote(cfg.Winget.Timeout.String()))
	cache := []string{"enabled", strconv.FormatBool(cfg.Cache.Enabled)}
	if cfg.Cache.Dir != "" {
		cache = append(cache, "dir", quote(cfg.Cache.Dir))
	}
	cache = append(cache,
		"list_ttl", quote(cfg.Cache.ListTTL.String()),
		"search_ttl", quote(cfg.Cache.SearchTTL.String()))
	section("cache", cache...)
	section("output", "format", quote(string(cfg.Output.Format)))
	section("search", "rank", quote(string(cfg.Search.Rank)))
	section("ui",
		"color_scheme", quote(string(cfg.UI.ColorScheme)),
		"verbose", strconv.FormatBool(cfg.UI.Verbose))

	return sb.String()
}
