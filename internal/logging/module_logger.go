package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-formulare/pkg/interfaces"
)

const (
	rootModule      = "formulare"
	loaderModule    = "formulare.loader"
	generatorModule = "formulare.generator"
	watcherModule   = "formulare.watcher"
	tablesModule    = "formulare.tables"
)

const (
	fieldLanguage = "lang"
	fieldForm     = "form"
	fieldArtifact = "artifact"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// LoaderLogger returns the logger namespace reserved for the data loader.
func LoaderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, loaderModule)
}

// GeneratorLogger returns the logger namespace reserved for site builds.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// WatcherLogger returns the logger namespace reserved for the file watcher.
func WatcherLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, watcherModule)
}

// TablesLogger returns the logger namespace reserved for table maintenance.
func TablesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, tablesModule)
}

// WithArtifactContext enriches the logger with the language, form and
// artifact kind of a build step. Empty values are ignored.
func WithArtifactContext(logger interfaces.Logger, lang, form, artifact string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(lang); trimmed != "" {
		fields[fieldLanguage] = trimmed
	}
	if trimmed := strings.TrimSpace(form); trimmed != "" {
		fields[fieldForm] = trimmed
	}
	if trimmed := strings.TrimSpace(artifact); trimmed != "" {
		fields[fieldArtifact] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
