package sitecmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formulare/internal/commands"
	"github.com/goliatone/go-formulare/internal/completeness"
	"github.com/goliatone/go-formulare/internal/forms"
	"github.com/goliatone/go-formulare/internal/generator"
	"github.com/goliatone/go-formulare/internal/maintenance"
	"github.com/goliatone/go-formulare/internal/pdfs"
	"github.com/goliatone/go-formulare/internal/reporting"
	"github.com/goliatone/go-formulare/pkg/interfaces"
)

// ErrCatalogUnavailable is returned when a handler has no way to load data.
var ErrCatalogUnavailable = errors.New("sitecmd: catalog loader not configured")

// CatalogLoader loads the translation catalog from the data directory.
type CatalogLoader func(ctx context.Context) (*forms.Catalog, error)

// BuildSiteHandler orchestrates generator builds using the shared command handler foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided generator service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}

		options := generator.BuildOptions{
			Languages: normalizeValues(msg.Languages),
			Forms:     normalizeValues(msg.Forms),
			Force:     msg.Force,
			DryRun:    msg.DryRun,
		}
		result, err := service.Build(ctx, options)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": "build",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("site.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Languages) > 0 {
				fields["languages"] = len(msg.Languages)
			}
			if len(msg.Forms) > 0 {
				fields["forms"] = len(msg.Forms)
			}
			if msg.Force {
				fields["force"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// StatsConfig carries the language settings the stats report depends on.
type StatsConfig struct {
	BaseLanguage  string
	MetaReference string
	// PDFs marks translations with a published PDF. Optional.
	PDFs *pdfs.Finder
}

// StatsHandler prints the completeness report.
type StatsHandler struct {
	inner *commands.Handler[StatsCommand]
}

// NewStatsHandler constructs a handler that loads the catalog on every run.
func NewStatsHandler(load CatalogLoader, cfg StatsConfig, logger interfaces.Logger, opts ...commands.HandlerOption[StatsCommand]) *StatsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg StatsCommand) error {
		if load == nil {
			return ErrCatalogUnavailable
		}
		catalog, err := load(ctx)
		if err != nil {
			return err
		}
		matrix := completeness.Compute(catalog, cfg.MetaReference)
		reporter := reporting.New(msg.Out, cfg.BaseLanguage, cfg.PDFs)
		return reporter.Print(matrix, catalog, reporting.Options{
			Language: msg.Language,
			Form:     msg.Form,
			Verbose:  msg.Verbose,
		})
	}

	handlerOpts := []commands.HandlerOption[StatsCommand]{
		commands.WithLogger[StatsCommand](baseLogger),
		commands.WithOperation[StatsCommand]("site.stats"),
		commands.WithMessageFields(func(msg StatsCommand) map[string]any {
			fields := map[string]any{}
			if msg.Language != "" {
				fields["lang"] = msg.Language
			}
			if msg.Form != "" {
				fields["form"] = msg.Form
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &StatsHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[StatsCommand].
func (h *StatsHandler) Execute(ctx context.Context, msg StatsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler clears generator artifacts.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs a handler that cleans generator output.
func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CleanSiteCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("site.clean"),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// TablesHandler runs table maintenance chores.
type TablesHandler struct {
	inner *commands.Handler[TablesCommand]
}

// NewTablesHandler constructs a handler around the maintenance service.
func NewTablesHandler(load CatalogLoader, tables *maintenance.Service, logger interfaces.Logger, opts ...commands.HandlerOption[TablesCommand]) *TablesHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg TablesCommand) error {
		if load == nil || tables == nil {
			return ErrCatalogUnavailable
		}
		catalog, err := load(ctx)
		if err != nil {
			return err
		}
		form := strings.TrimSpace(msg.Form)
		lang := strings.TrimSpace(msg.Language)

		var changes []maintenance.Change
		switch msg.Action {
		case TablesStrip:
			changes, err = tables.Strip(ctx, catalog, lang)
		case TablesNormalize:
			changes, err = tables.Normalize(ctx, catalog, form, lang)
		case TablesSeed:
			var change maintenance.Change
			change, err = tables.Seed(ctx, catalog, form)
			changes = []maintenance.Change{change}
		case TablesFill:
			var change maintenance.Change
			change, err = tables.Fill(ctx, catalog, form, lang)
			changes = []maintenance.Change{change}
		default:
			return fmt.Errorf("sitecmd: unknown table action %q", msg.Action)
		}
		if msg.Changes != nil {
			msg.Changes(changes)
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[TablesCommand]{
		commands.WithLogger[TablesCommand](baseLogger),
		commands.WithOperation[TablesCommand]("tables.run"),
		commands.WithMessageFields(func(msg TablesCommand) map[string]any {
			fields := map[string]any{"action": msg.Action}
			if msg.Form != "" {
				fields["form"] = msg.Form
			}
			if msg.Language != "" {
				fields["lang"] = msg.Language
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[TablesCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &TablesHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[TablesCommand].
func (h *TablesHandler) Execute(ctx context.Context, msg TablesCommand) error {
	return h.inner.Execute(ctx, msg)
}

func normalizeValues(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
