package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-formulare/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"output dir", func(c *runtimeconfig.Config) { c.Site.OutputDir = " " }, runtimeconfig.ErrOutputDirRequired},
		{"data dir", func(c *runtimeconfig.Config) { c.Site.DataDir = "" }, runtimeconfig.ErrDataDirRequired},
		{"base language", func(c *runtimeconfig.Config) { c.Site.BaseLanguage = "" }, runtimeconfig.ErrBaseLanguageRequired},
		{"threshold zero", func(c *runtimeconfig.Config) { c.Availability.Threshold = 0 }, runtimeconfig.ErrThresholdInvalid},
		{"threshold above one", func(c *runtimeconfig.Config) { c.Availability.Threshold = 1.2 }, runtimeconfig.ErrThresholdInvalid},
		{"workers", func(c *runtimeconfig.Config) { c.Generator.Workers = -1 }, runtimeconfig.ErrWorkersInvalid},
		{"strategy", func(c *runtimeconfig.Config) { c.Generator.Staleness = "ctime" }, runtimeconfig.ErrStalenessStrategyUnknown},
		{"manifest", func(c *runtimeconfig.Config) { c.Generator.ManifestFile = "" }, runtimeconfig.ErrManifestFileRequired},
		{"logging provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"logging level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"logging format", func(c *runtimeconfig.Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, runtimeconfig.ErrLoggingFormatInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidate_MtimeStrategyNeedsNoManifest(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.Staleness = "MTIME"
	cfg.Generator.ManifestFile = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if got := cfg.StalenessStrategy(); got != runtimeconfig.StalenessModTime {
		t.Fatalf("expected mtime strategy, got %q", got)
	}
}

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := runtimeconfig.Load(runtimeconfig.LoadOptions{SearchPaths: []string{t.TempDir()}})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Site.BaseLanguage != "de" || cfg.Availability.Threshold != 0.8 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if len(cfg.Maintenance.Exceptions) != 2 {
		t.Fatalf("expected default exceptions, got %v", cfg.Maintenance.Exceptions)
	}
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formulare.yaml")
	content := []byte(`site:
  output_dir: public
  meta_reference: fr
generator:
  workers: 3
  staleness: mtime
watch:
  debounce: 1s
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FORMULARE_SITE_BASE_LANGUAGE", "en")

	cfg, err := runtimeconfig.Load(runtimeconfig.LoadOptions{File: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Site.OutputDir != "public" || cfg.Site.MetaReference != "fr" {
		t.Fatalf("expected file values, got %+v", cfg.Site)
	}
	if cfg.Site.BaseLanguage != "en" {
		t.Fatalf("expected env override for base language, got %q", cfg.Site.BaseLanguage)
	}
	if cfg.Generator.Workers != 3 || cfg.StalenessStrategy() != runtimeconfig.StalenessModTime {
		t.Fatalf("unexpected generator config %+v", cfg.Generator)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Fatalf("expected 1s debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.Site.DataDir != "data" {
		t.Fatalf("expected default data dir to survive, got %q", cfg.Site.DataDir)
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := runtimeconfig.Load(runtimeconfig.LoadOptions{File: filepath.Join(t.TempDir(), "nope.yaml")})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
