package formulare_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-formulare"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := formulare.DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestConfigValidateThreshold(t *testing.T) {
	for _, threshold := range []float64{0, -0.5, 1.5} {
		cfg := formulare.DefaultConfig()
		cfg.Availability.Threshold = threshold
		if err := cfg.Validate(); !errors.Is(err, formulare.ErrThresholdInvalid) {
			t.Fatalf("threshold %v: expected ErrThresholdInvalid, got %v", threshold, err)
		}
	}

	cfg := formulare.DefaultConfig()
	cfg.Availability.Threshold = 1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("threshold 1 should be accepted, got %v", err)
	}
}

func TestConfigValidateStalenessStrategy(t *testing.T) {
	cfg := formulare.DefaultConfig()
	cfg.Generator.Staleness = "checksum"
	if err := cfg.Validate(); !errors.Is(err, formulare.ErrStalenessStrategyUnknown) {
		t.Fatalf("expected ErrStalenessStrategyUnknown, got %v", err)
	}

	cfg = formulare.DefaultConfig()
	cfg.Generator.ManifestFile = ""
	if err := cfg.Validate(); !errors.Is(err, formulare.ErrManifestFileRequired) {
		t.Fatalf("expected ErrManifestFileRequired, got %v", err)
	}

	cfg.Generator.Staleness = formulare.StalenessModTime
	if err := cfg.Validate(); err != nil {
		t.Fatalf("mtime strategy needs no manifest, got %v", err)
	}
}

func TestConfigValidateLogging(t *testing.T) {
	cfg := formulare.DefaultConfig()
	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); !errors.Is(err, formulare.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}

	cfg = formulare.DefaultConfig()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); !errors.Is(err, formulare.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}

	cfg = formulare.DefaultConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, formulare.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestLoadConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formulare.yaml")
	content := "site:\n  output_dir: public\n  base_language: en\navailability:\n  threshold: 0.5\nwatch:\n  debounce: 1s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := formulare.LoadConfig(formulare.LoadOptions{File: path})
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Site.OutputDir != "public" || cfg.Site.BaseLanguage != "en" {
		t.Fatalf("unexpected site config %+v", cfg.Site)
	}
	if cfg.Availability.Threshold != 0.5 {
		t.Fatalf("expected threshold 0.5, got %v", cfg.Availability.Threshold)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Fatalf("expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Site.DataDir != "data" {
		t.Fatalf("expected defaults for unset keys, got data dir %q", cfg.Site.DataDir)
	}
}
