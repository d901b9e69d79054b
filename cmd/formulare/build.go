package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	command "github.com/goliatone/go-command"
	"github.com/spf13/cobra"

	sitecmd "github.com/goliatone/go-formulare/internal/commands/site"
	"github.com/goliatone/go-formulare/internal/generator"
)

var errBuildHandlerMissing = errors.New("build handler not configured")

func newBuildCommand(a *app) *cobra.Command {
	var msg sitecmd.BuildSiteCommand

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render stale pages into the output directory",
		Long: `Render every page whose inputs changed since the last build.

Examples:
  formulare build
  formulare build --force
  formulare build --lang fr --lang it --form antrag
  formulare build --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.module(false)
			if err != nil {
				return err
			}
			return runBuild(cmd.Context(), cmd.OutOrStdout(), res.handlers.build, msg)
		},
	}
	cmd.Flags().StringArrayVarP(&msg.Languages, "lang", "l", nil, "restrict the build to a language (repeatable)")
	cmd.Flags().StringArrayVarP(&msg.Forms, "form", "f", nil, "restrict the build to a form (repeatable)")
	cmd.Flags().BoolVar(&msg.Force, "force", false, "render every artifact regardless of staleness")
	cmd.Flags().BoolVar(&msg.DryRun, "dry-run", false, "render without writing files")
	return cmd
}

func runBuild(ctx context.Context, out io.Writer, handler command.Commander[sitecmd.BuildSiteCommand], msg sitecmd.BuildSiteCommand) error {
	if handler == nil {
		return errBuildHandlerMissing
	}
	msg.ResultCallback = func(env sitecmd.ResultEnvelope) {
		printBuildSummary(out, env.Result)
	}
	return handler.Execute(ctx, msg)
}

func printBuildSummary(out io.Writer, result *generator.BuildResult) {
	if result == nil {
		return
	}
	prefix := "build"
	if result.DryRun {
		prefix = "build (dry run)"
	}
	fmt.Fprintf(out, "%s: built=%d unchanged=%d skipped=%d written=%d assets=%d duration=%s\n",
		prefix, result.Built, result.Unchanged, result.Skipped, result.Written, result.AssetsCopied, result.Duration)
	for _, err := range result.Errors {
		fmt.Fprintf(out, "  error: %v\n", err)
	}
}
