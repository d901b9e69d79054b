package formulare

import "github.com/goliatone/go-formulare/internal/runtimeconfig"

var (
	ErrDataDirRequired          = runtimeconfig.ErrDataDirRequired
	ErrTemplateDirRequired      = runtimeconfig.ErrTemplateDirRequired
	ErrOutputDirRequired        = runtimeconfig.ErrOutputDirRequired
	ErrBaseLanguageRequired     = runtimeconfig.ErrBaseLanguageRequired
	ErrThresholdInvalid         = runtimeconfig.ErrThresholdInvalid
	ErrWorkersInvalid           = runtimeconfig.ErrWorkersInvalid
	ErrStalenessStrategyUnknown = runtimeconfig.ErrStalenessStrategyUnknown
	ErrManifestFileRequired     = runtimeconfig.ErrManifestFileRequired
	ErrWatchDebounceInvalid     = runtimeconfig.ErrWatchDebounceInvalid
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config             = runtimeconfig.Config
	SiteConfig         = runtimeconfig.SiteConfig
	AvailabilityConfig = runtimeconfig.AvailabilityConfig
	GeneratorConfig    = runtimeconfig.GeneratorConfig
	MaintenanceConfig  = runtimeconfig.MaintenanceConfig
	WatchConfig        = runtimeconfig.WatchConfig
	LoggingConfig      = runtimeconfig.LoggingConfig
	LoadOptions        = runtimeconfig.LoadOptions
)

const (
	StalenessHash    = runtimeconfig.StalenessHash
	StalenessModTime = runtimeconfig.StalenessModTime
)

// DefaultConfig returns the layout of a conventional project checkout.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig layers defaults, an optional formulare.yaml and FORMULARE_*
// environment variables.
func LoadConfig(opts LoadOptions) (Config, error) {
	return runtimeconfig.Load(opts)
}
