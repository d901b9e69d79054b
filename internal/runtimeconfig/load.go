package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. FORMULARE_SITE_OUTPUT_DIR.
const EnvPrefix = "FORMULARE"

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// File is an explicit config file path. When empty, Load searches
	// SearchPaths for formulare.{yaml,yml,json,toml}.
	File        string
	SearchPaths []string
	// Viper lets callers pass an instance with flags already bound.
	Viper *viper.Viper
}

// Load layers defaults, an optional config file and FORMULARE_* environment
// variables, then validates the result.
func Load(opts LoadOptions) (Config, error) {
	v := opts.Viper
	if v == nil {
		v = viper.New()
	}
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("formulare")
		paths := opts.SearchPaths
		if len(paths) == 0 {
			paths = []string{"."}
		}
		for _, path := range paths {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("formulare config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("formulare config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve overrides for
// keys that are absent from the config file.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("site.data_dir", cfg.Site.DataDir)
	v.SetDefault("site.template_dir", cfg.Site.TemplateDir)
	v.SetDefault("site.static_dir", cfg.Site.StaticDir)
	v.SetDefault("site.annotator_dir", cfg.Site.AnnotatorDir)
	v.SetDefault("site.pdf_dir", cfg.Site.PDFDir)
	v.SetDefault("site.output_dir", cfg.Site.OutputDir)
	v.SetDefault("site.base_url", cfg.Site.BaseURL)
	v.SetDefault("site.base_language", cfg.Site.BaseLanguage)
	v.SetDefault("site.meta_reference", cfg.Site.MetaReference)

	v.SetDefault("availability.threshold", cfg.Availability.Threshold)

	v.SetDefault("generator.workers", cfg.Generator.Workers)
	v.SetDefault("generator.staleness", cfg.Generator.Staleness)
	v.SetDefault("generator.manifest_file", cfg.Generator.ManifestFile)
	v.SetDefault("generator.copy_assets", cfg.Generator.CopyAssets)
	v.SetDefault("generator.base_form_tables", cfg.Generator.BaseFormTables)

	v.SetDefault("maintenance.exceptions", cfg.Maintenance.Exceptions)

	v.SetDefault("watch.debounce", cfg.Watch.Debounce)

	v.SetDefault("logging.provider", cfg.Logging.Provider)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.add_source", cfg.Logging.AddSource)
	v.SetDefault("logging.focus", cfg.Logging.Focus)
}
