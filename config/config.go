// Package config loads transkit settings from defaults, the .transkit.yaml
// project file, TRANSKIT_ environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/minios-linux/transkit/formats"
	"github.com/minios-linux/transkit/store"
)

// FileNames are the project file names, in lookup order.
var FileNames = []string{".transkit.yaml", ".transkit.yml"}

// EnvPrefix prefixes environment overrides: TRANSKIT_WORKERS=8.
const EnvPrefix = "TRANSKIT_"

// maxUpwardSearchLevels limits how far up the tree the project file is
// searched for.
const maxUpwardSearchLevels = 10

// Converter configures an externally converted format.
type Converter struct {
	ToHTML   []string      `koanf:"to_html"`
	FromHTML []string      `koanf:"from_html"`
	Timeout  time.Duration `koanf:"timeout"`
}

// FormatRule declares the format of files matching Glob. Globs without a
// slash match the base name, others the slash-separated path relative to
// the project root.
type FormatRule struct {
	Glob   string `koanf:"glob"`
	Format string `koanf:"format"`
}

// Config holds the effective settings.
type Config struct {
	LogLevel       string               `koanf:"log_level"`
	Validate       bool                 `koanf:"validate"`
	Workers        int                  `koanf:"workers"`
	LanguageFormat string               `koanf:"language_format"`
	SourceLanguage string               `koanf:"source_language"`
	Converters     map[string]Converter `koanf:"converters"`
	Formats        []FormatRule         `koanf:"formats"`

	// File is the project file that was read, if any.
	File string `koanf:"-"`
	// Root is the directory rules are relative to.
	Root string `koanf:"-"`
}

// Options controls Load.
type Options struct {
	// Dir is where the project file search starts. Defaults to the
	// working directory.
	Dir string
	// File is an explicit project file; it must exist.
	File string
	// Flags are applied when explicitly set. Flag names map to keys with
	// dashes turned into underscores.
	Flags *pflag.FlagSet
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"log_level":       "warn",
		"validate":        false,
		"workers":         4,
		"language_format": "",
		"source_language": "en",
	}
}

// Load merges all configuration layers.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}
	cfgFile := opts.File
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	} else {
		cfgFile = FindFile(dir)
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(opts.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = cfgFile
	cfg.Root = dir
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			cfg.Root = filepath.Dir(abs)
		}
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindFile searches startDir and its parents for a project file.
func FindFile(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Check rejects settings no command could work with.
func (c *Config) Check() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.LanguageFormat != "" && !slices.Contains(store.LanguageFormats(), c.LanguageFormat) {
		return fmt.Errorf("unknown language_format %q", c.LanguageFormat)
	}
	reg := c.Registry()
	for i, rule := range c.Formats {
		if rule.Glob == "" {
			return fmt.Errorf("formats[%d]: missing glob", i)
		}
		if _, err := path.Match(rule.Glob, ""); err != nil {
			return fmt.Errorf("formats[%d]: %w", i, err)
		}
		if _, err := reg.Get(rule.Format); err != nil {
			return fmt.Errorf("formats[%d]: %w", i, err)
		}
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Registry returns the format registry with the configured converters.
func (c *Config) Registry() *store.Registry {
	if len(c.Converters) == 0 {
		return formats.Default()
	}
	converters := make(map[string]formats.Converter, len(c.Converters))
	for id, conv := range c.Converters {
		converters[id] = formats.Converter(conv)
	}
	return formats.New(converters)
}

// FormatFor returns the format declared for file, or "" to autodetect.
// The first matching rule wins.
func (c *Config) FormatFor(file string) string {
	rel := filepath.Base(file)
	if c.Root != "" {
		if abs, err := filepath.Abs(file); err == nil {
			if r, err := filepath.Rel(c.Root, abs); err == nil && !strings.HasPrefix(r, "..") {
				rel = r
			}
		}
	}
	rel = filepath.ToSlash(rel)
	for _, rule := range c.Formats {
		target := rel
		if !strings.Contains(rule.Glob, "/") {
			target = path.Base(rel)
		}
		if ok, _ := path.Match(rule.Glob, target); ok {
			return rule.Format
		}
	}
	return ""
}
