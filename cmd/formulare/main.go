// Command formulare builds and maintains the translated forms site.
//
// Configuration is read from formulare.yaml in the project root (or --config)
// and FORMULARE_* environment variables, e.g. FORMULARE_SITE_OUTPUT_DIR.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps global flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"log-provider": "logging.provider",
	"output":       "site.output_dir",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runContext(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "formulare: %v\n", err)
		os.Exit(1)
	}
}

func runContext(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// app carries the global flags shared by every subcommand.
type app struct {
	configFile string
	root       string
	viper      *viper.Viper
}

func newRootCommand() *cobra.Command {
	a := &app{viper: viper.New()}

	cmd := &cobra.Command{
		Use:   "formulare",
		Short: "Build the translated forms site",
		Long: `formulare renders translated versions of administrative forms into a static site.

Translations live in <data>/<form>/<lang>.csv next to each form.json; a
translation is published once its share of translated keys reaches the
availability threshold.

Examples:
  formulare build                     Rebuild stale pages
  formulare build --force --lang fr   Rebuild every French page
  formulare stats --lang it           Show Italian completeness
  formulare watch                     Rebuild on every change
  formulare tables strip              Drop untranslated entries`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is formulare.yaml in the project root)")
	flags.StringVar(&a.root, "root", ".", "project root that relative directories resolve against")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "", "log format for the gologger provider (json, console, pretty)")
	flags.String("log-provider", "", "logging provider (console, gologger)")
	flags.String("output", "", "output directory")
	bindFlags(a.viper, flags)

	cmd.AddCommand(
		newBuildCommand(a),
		newStatsCommand(a),
		newCleanCommand(a),
		newWatchCommand(a),
		newTablesCommand(a),
	)
	return cmd
}

func (a *app) module(tablesDryRun bool) (*moduleResources, error) {
	res, err := moduleBuilder(moduleOptions{
		ConfigFile:   a.configFile,
		Root:         a.root,
		Viper:        a.viper,
		TablesDryRun: tablesDryRun,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("bootstrap: no module configured")
	}
	return res, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(flag *pflag.Flag) {
		if key, ok := flagKeys[flag.Name]; ok {
			_ = v.BindPFlag(key, flag)
		}
	})
}
