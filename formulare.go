// Package formulare builds a static site that publishes form translations.
//
// New wires the loader, generator, reporting and table maintenance behind a
// Module. Hosts that need finer control use the pkg/generator and
// pkg/storage packages directly.
package formulare

import (
	"context"
	"io"

	sitecmd "github.com/goliatone/go-formulare/internal/commands/site"
	"github.com/goliatone/go-formulare/internal/di"
	"github.com/goliatone/go-formulare/internal/forms"
	"github.com/goliatone/go-formulare/internal/generator"
	"github.com/goliatone/go-formulare/internal/maintenance"
)

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// BuildOptions exports the build filters.
type BuildOptions = generator.BuildOptions

// BuildResult exports the build summary.
type BuildResult = generator.BuildResult

// Catalog exports the loaded translation data.
type Catalog = forms.Catalog

// TableChange exports the outcome of a table maintenance chore.
type TableChange = maintenance.Change

// Option customises the container behind a Module.
type Option = di.Option

var (
	WithRoot           = di.WithRoot
	WithLoggerProvider = di.WithLoggerProvider
	WithOutputStorage  = di.WithOutputStorage
	WithDataStorage    = di.WithDataStorage
	WithTablesDryRun   = di.WithTablesDryRun
)

// StatsOptions narrows the completeness report.
type StatsOptions struct {
	Language string
	Form     string
	Verbose  bool
}

// Module represents the top level formulare runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Generator returns the configured generator service.
func (m *Module) Generator() GeneratorService {
	return m.container.GeneratorService()
}

// LoadCatalog reads and validates the data directory.
func (m *Module) LoadCatalog(ctx context.Context) (*Catalog, error) {
	return m.container.LoadCatalog(ctx)
}

// Build renders every stale artifact. The result is returned even when some
// artifacts failed.
func (m *Module) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	var result *BuildResult
	err := m.container.CommandHandlers().Build.Execute(ctx, sitecmd.BuildSiteCommand{
		Languages: opts.Languages,
		Forms:     opts.Forms,
		Force:     opts.Force,
		DryRun:    opts.DryRun,
		ResultCallback: func(env sitecmd.ResultEnvelope) {
			result = env.Result
		},
	})
	return result, err
}

// Stats writes the completeness report to w.
func (m *Module) Stats(ctx context.Context, w io.Writer, opts StatsOptions) error {
	return m.container.CommandHandlers().Stats.Execute(ctx, sitecmd.StatsCommand{
		Language: opts.Language,
		Form:     opts.Form,
		Verbose:  opts.Verbose,
		Out:      w,
	})
}

// Clean removes generated artifacts from the output directory.
func (m *Module) Clean(ctx context.Context) error {
	return m.container.CommandHandlers().Clean.Execute(ctx, sitecmd.CleanSiteCommand{})
}

// Tables runs one table maintenance chore (strip, normalize, seed or fill).
func (m *Module) Tables(ctx context.Context, action, form, lang string) ([]TableChange, error) {
	var changes []TableChange
	err := m.container.CommandHandlers().Tables.Execute(ctx, sitecmd.TablesCommand{
		Action:   action,
		Form:     form,
		Language: lang,
		Changes:  func(c []maintenance.Change) { changes = c },
	})
	return changes, err
}
