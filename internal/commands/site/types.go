package sitecmd

import (
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-formulare/internal/generator"
	"github.com/goliatone/go-formulare/internal/maintenance"
)

const (
	buildSiteMessageType = "formulare.site.build"
	statsMessageType     = "formulare.site.stats"
	cleanSiteMessageType = "formulare.site.clean"
	tablesMessageType    = "formulare.tables"
)

// Table chores accepted by TablesCommand.
const (
	TablesStrip     = "strip"
	TablesNormalize = "normalize"
	TablesSeed      = "seed"
	TablesFill      = "fill"
)

// ResultCallback receives build results produced by generator operations. The callback is optional
// and is invoked synchronously from the handler when a BuildResult is available.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a command execution that generated a BuildResult.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand executes a generator build using the provided filters.
type BuildSiteCommand struct {
	Languages      []string       `json:"languages,omitempty"`
	Forms          []string       `json:"forms,omitempty"`
	Force          bool           `json:"force,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate rejects blank language or form filters.
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	if hasBlank(m.Languages) {
		errs["languages"] = validation.NewError("formulare.site.build.language_invalid", "languages must not contain empty values")
	}
	if hasBlank(m.Forms) {
		errs["forms"] = validation.NewError("formulare.site.build.form_invalid", "forms must not contain empty values")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// StatsCommand prints translation completeness to Out.
type StatsCommand struct {
	Language string    `json:"language,omitempty"`
	Form     string    `json:"form,omitempty"`
	Verbose  bool      `json:"verbose,omitempty"`
	Out      io.Writer `json:"-"`
}

// Type implements command.Message.
func (StatsCommand) Type() string { return statsMessageType }

// Validate requires a destination writer.
func (m StatsCommand) Validate() error {
	if m.Out == nil {
		return validation.Errors{
			"out": validation.NewError("formulare.site.stats.out_required", "an output writer is required"),
		}
	}
	return nil
}

// CleanSiteCommand removes every generated artifact from the output storage.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

// TablesCommand runs one table maintenance chore.
type TablesCommand struct {
	Action   string                     `json:"action"`
	Form     string                     `json:"form,omitempty"`
	Language string                     `json:"language,omitempty"`
	Changes  func([]maintenance.Change) `json:"-"`
}

// Type implements command.Message.
func (TablesCommand) Type() string { return tablesMessageType }

// Validate checks the chore name and the arguments each chore needs.
func (m TablesCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Action,
			validation.Required,
			validation.In(TablesStrip, TablesNormalize, TablesSeed, TablesFill),
		),
		validation.Field(&m.Form,
			validation.When(m.Action == TablesSeed || m.Action == TablesFill, validation.Required),
		),
		validation.Field(&m.Language,
			validation.When(m.Action == TablesFill, validation.Required),
		),
	)
}

// FeatureGates exposes runtime switches used to guard handler execution.
type FeatureGates struct {
	GeneratorEnabled func() bool
}

func (g FeatureGates) generatorEnabled() bool {
	if g.GeneratorEnabled == nil {
		return false
	}
	return g.GeneratorEnabled()
}

func hasBlank(values []string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			return true
		}
	}
	return false
}
