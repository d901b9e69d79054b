package di

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-formulare/internal/adapters/storage"
	"github.com/goliatone/go-formulare/internal/commands"
	sitecmd "github.com/goliatone/go-formulare/internal/commands/site"
	"github.com/goliatone/go-formulare/internal/forms"
	"github.com/goliatone/go-formulare/internal/generator"
	"github.com/goliatone/go-formulare/internal/logging"
	"github.com/goliatone/go-formulare/internal/logging/console"
	"github.com/goliatone/go-formulare/internal/logging/gologger"
	"github.com/goliatone/go-formulare/internal/maintenance"
	"github.com/goliatone/go-formulare/internal/markdown"
	"github.com/goliatone/go-formulare/internal/pdfs"
	"github.com/goliatone/go-formulare/internal/runtimeconfig"
	"github.com/goliatone/go-formulare/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Container wires the project directories, logging, storage and services
// behind the CLI commands.
type Container struct {
	Config runtimeconfig.Config

	root           string
	loggerProvider interfaces.LoggerProvider

	sources interfaces.StorageProvider
	output  interfaces.StorageProvider
	data    interfaces.StorageProvider

	markdown generator.MarkdownParser
	assets   generator.AssetCopier

	generatorSvc generator.Service
	tablesSvc    *maintenance.Service
	tablesDryRun bool
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithRoot resolves relative project directories against dir.
func WithRoot(dir string) Option {
	return func(c *Container) {
		if strings.TrimSpace(dir) != "" {
			c.root = dir
		}
	}
}

// WithLoggerProvider overrides the provider selected from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithOutputStorage overrides the storage generated artifacts are written to.
func WithOutputStorage(sp interfaces.StorageProvider) Option {
	return func(c *Container) {
		c.output = sp
	}
}

// WithDataStorage overrides the storage maintenance chores write tables to.
func WithDataStorage(sp interfaces.StorageProvider) Option {
	return func(c *Container) {
		c.data = sp
	}
}

// WithGeneratorService overrides the generator.
func WithGeneratorService(svc generator.Service) Option {
	return func(c *Container) {
		c.generatorSvc = svc
	}
}

// WithTablesDryRun makes table chores report changes without writing.
func WithTablesDryRun(enabled bool) Option {
	return func(c *Container) {
		c.tablesDryRun = enabled
	}
}

// NewContainer validates cfg and wires default collaborators.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{
		Config: cfg,
		root:   ".",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.loggerProvider == nil {
		provider, err := configureLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}

	site := cfg.Site
	if c.sources == nil {
		c.sources = storage.NewFilesystemProvider(c.root)
	}
	if c.output == nil {
		c.output = storage.NewFilesystemProvider(c.path(site.OutputDir))
	}
	if c.data == nil {
		c.data = storage.NewFilesystemProvider(c.path(site.DataDir))
	}
	if c.markdown == nil {
		c.markdown = markdown.NewGoldmarkParser(interfaces.ParseOptions{})
	}
	if c.assets == nil {
		c.assets = rootedCopier{root: c.root, inner: generator.DiskCopier{}}
	}

	if c.generatorSvc == nil {
		c.generatorSvc = generator.NewService(c.GeneratorConfig(), generator.Dependencies{
			Data:      os.DirFS(c.path(site.DataDir)),
			Templates: os.DirFS(c.path(site.TemplateDir)),
			Static:    os.DirFS(c.path(site.StaticDir)),
			Sources:   c.sources,
			Output:    c.output,
			Markdown:  c.markdown,
			Assets:    c.assets,
			Logger:    c.loggerProvider,
		})
	}
	c.tablesSvc = maintenance.NewService(c.data,
		maintenance.WithExceptions(cfg.Maintenance.Exceptions...),
		maintenance.WithLogger(logging.TablesLogger(c.loggerProvider)),
		maintenance.WithDryRun(c.tablesDryRun),
	)
	return c, nil
}

func configureLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "", "console":
		level, ok := console.ParseLevel(cfg.Level)
		if !ok {
			return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingLevelInvalid, cfg.Level)
		}
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}

// GeneratorConfig maps the runtime configuration onto the generator.
func (c *Container) GeneratorConfig() generator.Config {
	cfg := c.Config
	return generator.Config{
		DataDir:        cfg.Site.DataDir,
		TemplateDir:    cfg.Site.TemplateDir,
		StaticDir:      cfg.Site.StaticDir,
		AnnotatorDir:   cfg.Site.AnnotatorDir,
		PDFDir:         cfg.Site.PDFDir,
		OutputDir:      cfg.Site.OutputDir,
		BaseURL:        cfg.Site.BaseURL,
		BaseLanguage:   cfg.Site.BaseLanguage,
		MetaReference:  cfg.Site.MetaReference,
		Threshold:      cfg.Availability.Threshold,
		BaseFormTables: cfg.Generator.BaseFormTables,
		Workers:        cfg.Generator.Workers,
		Staleness:      cfg.StalenessStrategy(),
		ManifestFile:   cfg.Generator.ManifestFile,
		CopyAssets:     cfg.Generator.CopyAssets,
	}
}

// Path resolves a project-relative directory against the container root.
func (c *Container) Path(dir string) string {
	return c.path(dir)
}

func (c *Container) path(dir string) string {
	if filepath.IsAbs(dir) || c.root == "." {
		return dir
	}
	return filepath.Join(c.root, dir)
}

// LoggerProvider returns the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// GeneratorService returns the site generator.
func (c *Container) GeneratorService() generator.Service {
	return c.generatorSvc
}

// TablesService returns the table maintenance service.
func (c *Container) TablesService() *maintenance.Service {
	return c.tablesSvc
}

// OutputStorage returns the storage generated artifacts are written to.
func (c *Container) OutputStorage() interfaces.StorageProvider {
	return c.output
}

// LoadCatalog reads the data directory.
func (c *Container) LoadCatalog(ctx context.Context) (*forms.Catalog, error) {
	loader := forms.NewLoader(os.DirFS(c.path(c.Config.Site.DataDir)),
		forms.WithBaseLanguage(c.Config.Site.BaseLanguage),
		forms.WithBaseFormTables(c.Config.Generator.BaseFormTables),
		forms.WithLogger(logging.LoaderLogger(c.loggerProvider)),
	)
	return loader.Load(ctx, ".")
}

// PDFFinder locates published PDFs below the static directory.
func (c *Container) PDFFinder() *pdfs.Finder {
	site := c.Config.Site
	prefix := strings.TrimRight(site.BaseURL, "/") + "/static/" + site.PDFDir
	return pdfs.NewFinderFS(os.DirFS(c.path(site.StaticDir)), site.PDFDir, prefix)
}

// WatchRoots lists the directories whose changes require a rebuild.
func (c *Container) WatchRoots() []string {
	site := c.Config.Site
	roots := []string{c.path(site.DataDir), c.path(site.TemplateDir), c.path(site.StaticDir)}
	if site.AnnotatorDir != "" {
		roots = append(roots, c.path(site.AnnotatorDir))
	}
	return roots
}

// Handlers groups the command handlers exposed by the container.
type Handlers struct {
	Build  *sitecmd.BuildSiteHandler
	Stats  *sitecmd.StatsHandler
	Clean  *sitecmd.CleanSiteHandler
	Tables *sitecmd.TablesHandler
}

// CommandHandlers builds one handler per command.
func (c *Container) CommandHandlers() Handlers {
	gates := sitecmd.FeatureGates{GeneratorEnabled: func() bool { return c.generatorSvc != nil }}
	logger := commands.CommandLogger(c.loggerProvider, "site")
	return Handlers{
		Build: sitecmd.NewBuildSiteHandler(c.generatorSvc, logger, gates),
		Stats: sitecmd.NewStatsHandler(c.LoadCatalog, sitecmd.StatsConfig{
			BaseLanguage:  c.Config.Site.BaseLanguage,
			MetaReference: c.Config.Site.MetaReference,
			PDFs:          c.PDFFinder(),
		}, logger),
		Clean: sitecmd.NewCleanSiteHandler(c.generatorSvc, logger, gates),
		Tables: sitecmd.NewTablesHandler(c.LoadCatalog, c.tablesSvc,
			commands.CommandLogger(c.loggerProvider, "tables")),
	}
}

// RegisterCommands hands every command handler to registry.
func (c *Container) RegisterCommands(registry CommandRegistry) error {
	if registry == nil {
		return nil
	}
	handlers := c.CommandHandlers()
	for _, handler := range []any{handlers.Build, handlers.Stats, handlers.Clean, handlers.Tables} {
		if err := registry.RegisterCommand(handler); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ command.Commander[sitecmd.BuildSiteCommand] = (*sitecmd.BuildSiteHandler)(nil)
	_ command.Commander[sitecmd.StatsCommand]     = (*sitecmd.StatsHandler)(nil)
	_ command.Commander[sitecmd.CleanSiteCommand] = (*sitecmd.CleanSiteHandler)(nil)
	_ command.Commander[sitecmd.TablesCommand]    = (*sitecmd.TablesHandler)(nil)
)

type rootedCopier struct {
	root  string
	inner generator.AssetCopier
}

func (r rootedCopier) CopyTree(ctx context.Context, src, dest string) (int, error) {
	if r.root != "." {
		if !filepath.IsAbs(src) {
			src = filepath.Join(r.root, src)
		}
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(r.root, dest)
		}
	}
	return r.inner.CopyTree(ctx, src, dest)
}
