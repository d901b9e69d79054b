package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrDataDirRequired          = errors.New("formulare config: data directory is required")
	ErrTemplateDirRequired      = errors.New("formulare config: template directory is required")
	ErrOutputDirRequired        = errors.New("formulare config: output directory is required")
	ErrBaseLanguageRequired     = errors.New("formulare config: base language is required")
	ErrThresholdInvalid         = errors.New("formulare config: availability threshold must be within (0, 1]")
	ErrWorkersInvalid           = errors.New("formulare config: generator workers must be zero or positive")
	ErrStalenessStrategyUnknown = errors.New("formulare config: staleness strategy is invalid")
	ErrManifestFileRequired     = errors.New("formulare config: manifest file is required for the hash strategy")
	ErrWatchDebounceInvalid     = errors.New("formulare config: watch debounce must be zero or positive")
	ErrLoggingProviderUnknown   = errors.New("formulare config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("formulare config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("formulare config: logging format is invalid")
)

const (
	// StalenessHash compares dependency content hashes recorded in the build manifest.
	StalenessHash = "hash"
	// StalenessModTime compares dependency modification times against the target.
	StalenessModTime = "mtime"
)

// Config aggregates everything a build, stats run or watch session needs.
type Config struct {
	Site         SiteConfig         `mapstructure:"site"`
	Availability AvailabilityConfig `mapstructure:"availability"`
	Generator    GeneratorConfig    `mapstructure:"generator"`
	Maintenance  MaintenanceConfig  `mapstructure:"maintenance"`
	Watch        WatchConfig        `mapstructure:"watch"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// SiteConfig locates the project inputs and outputs.
type SiteConfig struct {
	DataDir      string `mapstructure:"data_dir"`
	TemplateDir  string `mapstructure:"template_dir"`
	StaticDir    string `mapstructure:"static_dir"`
	AnnotatorDir string `mapstructure:"annotator_dir"`
	// PDFDir is relative to StaticDir.
	PDFDir    string `mapstructure:"pdf_dir"`
	OutputDir string `mapstructure:"output_dir"`
	BaseURL   string `mapstructure:"base_url"`
	// BaseLanguage is the source language of every form.
	BaseLanguage string `mapstructure:"base_language"`
	// MetaReference is the language whose meta table defines the meta key set.
	MetaReference string `mapstructure:"meta_reference"`
}

// AvailabilityConfig controls when a translation is published.
type AvailabilityConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

// GeneratorConfig captures behaviour for the static site generator.
type GeneratorConfig struct {
	Workers      int    `mapstructure:"workers"`
	Staleness    string `mapstructure:"staleness"`
	ManifestFile string `mapstructure:"manifest_file"`
	CopyAssets   bool   `mapstructure:"copy_assets"`
	// BaseFormTables loads base-language form tables, which are ignored by default.
	BaseFormTables bool `mapstructure:"base_form_tables"`
}

// MaintenanceConfig configures the table maintenance commands.
type MaintenanceConfig struct {
	// Exceptions are keys that legitimately translate to themselves.
	Exceptions []string `mapstructure:"exceptions"`
}

// WatchConfig configures the rebuild-on-change loop.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

// DefaultConfig returns the layout of a conventional project checkout.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			DataDir:       "data",
			TemplateDir:   "templates",
			StaticDir:     "static",
			AnnotatorDir:  "annotator",
			PDFDir:        "pdf",
			OutputDir:     "build",
			BaseURL:       "/",
			BaseLanguage:  "de",
			MetaReference: "en",
		},
		Availability: AvailabilityConfig{
			Threshold: 0.8,
		},
		Generator: GeneratorConfig{
			Staleness:    StalenessHash,
			ManifestFile: ".formulare-manifest.json",
			CopyAssets:   true,
		},
		Maintenance: MaintenanceConfig{
			Exceptions: []string{"BIC", "IBAN"},
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate reports the first configuration problem found.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Site.DataDir) == "" {
		return ErrDataDirRequired
	}
	if strings.TrimSpace(cfg.Site.TemplateDir) == "" {
		return ErrTemplateDirRequired
	}
	if strings.TrimSpace(cfg.Site.OutputDir) == "" {
		return ErrOutputDirRequired
	}
	if strings.TrimSpace(cfg.Site.BaseLanguage) == "" {
		return ErrBaseLanguageRequired
	}
	if cfg.Availability.Threshold <= 0 || cfg.Availability.Threshold > 1 {
		return fmt.Errorf("%w: %v", ErrThresholdInvalid, cfg.Availability.Threshold)
	}
	if cfg.Generator.Workers < 0 {
		return ErrWorkersInvalid
	}
	switch normalize(cfg.Generator.Staleness) {
	case StalenessHash:
		if strings.TrimSpace(cfg.Generator.ManifestFile) == "" {
			return ErrManifestFileRequired
		}
	case StalenessModTime:
	default:
		return fmt.Errorf("%w: %s", ErrStalenessStrategyUnknown, cfg.Generator.Staleness)
	}
	if cfg.Watch.Debounce < 0 {
		return ErrWatchDebounceInvalid
	}

	if provider := normalize(cfg.Logging.Provider); provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if normalize(cfg.Logging.Provider) == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// StalenessStrategy returns the normalised strategy name.
func (cfg Config) StalenessStrategy() string {
	if strategy := normalize(cfg.Generator.Staleness); strategy != "" {
		return strategy
	}
	return StalenessHash
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
