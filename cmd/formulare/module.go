package main

import (
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/spf13/viper"

	sitecmd "github.com/goliatone/go-formulare/internal/commands/site"
	"github.com/goliatone/go-formulare/internal/di"
	"github.com/goliatone/go-formulare/internal/logging"
	"github.com/goliatone/go-formulare/internal/runtimeconfig"
	"github.com/goliatone/go-formulare/pkg/interfaces"
)

var moduleBuilder = buildModule

type moduleOptions struct {
	ConfigFile   string
	Root         string
	Viper        *viper.Viper
	TablesDryRun bool
}

type handlerSet struct {
	build  command.Commander[sitecmd.BuildSiteCommand]
	stats  command.Commander[sitecmd.StatsCommand]
	clean  command.Commander[sitecmd.CleanSiteCommand]
	tables command.Commander[sitecmd.TablesCommand]
}

type moduleResources struct {
	handlers handlerSet

	// watchRoots and outputDir are resolved against the project root.
	watchRoots []string
	outputDir  string
	debounce   time.Duration
	logger     interfaces.Logger
}

func buildModule(opts moduleOptions) (*moduleResources, error) {
	root := strings.TrimSpace(opts.Root)
	if root == "" {
		root = "."
	}
	cfg, err := runtimeconfig.Load(runtimeconfig.LoadOptions{
		File:        opts.ConfigFile,
		SearchPaths: []string{root},
		Viper:       opts.Viper,
	})
	if err != nil {
		return nil, err
	}

	container, err := di.NewContainer(cfg,
		di.WithRoot(root),
		di.WithTablesDryRun(opts.TablesDryRun),
	)
	if err != nil {
		return nil, err
	}

	handlers := container.CommandHandlers()
	return &moduleResources{
		handlers: handlerSet{
			build:  handlers.Build,
			stats:  handlers.Stats,
			clean:  handlers.Clean,
			tables: handlers.Tables,
		},
		watchRoots: container.WatchRoots(),
		outputDir:  container.Path(cfg.Site.OutputDir),
		debounce:   cfg.Watch.Debounce,
		logger:     logging.WatcherLogger(container.LoggerProvider()),
	}, nil
}
