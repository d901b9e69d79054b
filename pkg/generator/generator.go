// Package generator exposes the static site generation API for go-formulare hosts.
// Use NewService with Config and Dependencies to plan and build the translation site.
package generator

import internal "github.com/goliatone/go-formulare/internal/generator"

type (
	Service      = internal.Service
	Config       = internal.Config
	BuildOptions = internal.BuildOptions
	BuildResult  = internal.BuildResult
	Artifact     = internal.Artifact
	Kind         = internal.Kind
	Diagnostic   = internal.Diagnostic
	Dependencies = internal.Dependencies
	AssetCopier  = internal.AssetCopier
	DiskCopier   = internal.DiskCopier
)

const (
	KindIndex       = internal.KindIndex
	KindStats       = internal.KindStats
	KindOverview    = internal.KindOverview
	KindLanguage    = internal.KindLanguage
	KindTranslation = internal.KindTranslation
	KindPrint       = internal.KindPrint
	KindResource    = internal.KindResource

	StalenessHash    = internal.StalenessHash
	StalenessModTime = internal.StalenessModTime
)

var ErrServiceDisabled = internal.ErrServiceDisabled

// NewService wires a static site generator with the supplied configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return internal.NewService(cfg, deps)
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return internal.NewDisabledService()
}
