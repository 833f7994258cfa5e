package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileNames[0])
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.LogLevel != "warn" || cfg.Workers != 4 || cfg.Validate {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
	if cfg.SourceLanguage != "en" {
		t.Fatalf("SourceLanguage = %q, want en", cfg.SourceLanguage)
	}
	if cfg.File != "" {
		t.Fatalf("File = %q, want none", cfg.File)
	}
}

func TestLoadLayers(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	path := writeConfig(t, root, `log_level: info
workers: 2
validate: true
language_format: bcp
converters:
  odt:
    to_html: [soffice, "{in}"]
    timeout: 30s
formats:
  - glob: "locales/*.json"
    format: i18next
  - glob: "*.txt"
    format: csv-simple
`)
	t.Setenv("TRANSKIT_WORKERS", "6")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "warn", "")
	flags.Bool("validate", false, "")
	if err := flags.Parse([]string{"--log-level=debug"}); err != nil {
		t.Fatalf("Parse flags: %v", err)
	}

	cfg, err := Load(Options{Dir: sub, Flags: flags})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.File != path {
		t.Fatalf("File = %q, want %q", cfg.File, path)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug from flag", cfg.LogLevel)
	}
	if cfg.Workers != 6 {
		t.Fatalf("Workers = %d, want 6 from env", cfg.Workers)
	}
	if !cfg.Validate {
		t.Fatal("unset flag must not override validate from file")
	}
	if cfg.LanguageFormat != "bcp" {
		t.Fatalf("LanguageFormat = %q, want bcp", cfg.LanguageFormat)
	}
	odt := cfg.Converters["odt"]
	if len(odt.ToHTML) != 2 || odt.ToHTML[0] != "soffice" || odt.Timeout != 30*time.Second {
		t.Fatalf("odt converter = %#v", odt)
	}
	if _, err := cfg.Registry().Get("odt"); err != nil {
		t.Fatalf("Registry().Get(odt): %v", err)
	}

	tests := []struct {
		file, want string
	}{
		{filepath.Join(root, "locales", "de.json"), "i18next"},
		{filepath.Join(root, "other", "de.json"), ""},
		{filepath.Join(root, "x", "notes.txt"), "csv-simple"},
		{filepath.Join(root, "de.po"), ""},
	}
	for _, tt := range tests {
		if got := cfg.FormatFor(tt.file); got != tt.want {
			t.Errorf("FormatFor(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, content string
	}{
		{"log level", "log_level: loud\n"},
		{"workers", "workers: -1\n"},
		{"language format", "language_format: klingon\n"},
		{"unknown format", "formats:\n  - glob: '*.x'\n    format: nope\n"},
		{"bad glob", "formats:\n  - glob: '[x'\n    format: po\n"},
		{"yaml", "workers: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			if _, err := Load(Options{Dir: dir}); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	if _, err := Load(Options{File: filepath.Join(t.TempDir(), "none.yaml")}); err == nil {
		t.Fatal("expected error for missing explicit file")
	}
}

func TestLanguageFromPath(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"po/ru.po", "ru"},
		{"po/pt_BR.po", "pt_BR"},
		{"public/translations/pt-BR.json", "pt-BR"},
		{"po/ru/app.po", "ru"},
		{"locale/de/LC_MESSAGES/app.po", "de"},
		{"res/values-de/strings.xml", "de"},
		{"res/values-pt-rBR/strings.xml", "pt_BR"},
		{"res/values/strings.xml", ""},
		{"messages_fr.properties", "fr"},
		{"messages_pt_BR.properties", "pt_BR"},
		{"config/app.de.yml", "de"},
		{"po/messages.pot", ""},
		{"docs/readme.md", ""},
	}
	for _, tt := range tests {
		if got := LanguageFromPath(tt.path); got != tt.want {
			t.Errorf("LanguageFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
