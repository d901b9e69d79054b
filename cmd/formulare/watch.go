package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	sitecmd "github.com/goliatone/go-formulare/internal/commands/site"
	"github.com/goliatone/go-formulare/internal/watcher"
)

func newWatchCommand(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build once, then rebuild whenever data, templates or assets change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.module(false)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), res, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "force the initial build")
	return cmd
}

func runWatch(ctx context.Context, out, errOut io.Writer, res *moduleResources, force bool) error {
	if res.handlers.build == nil {
		return errBuildHandlerMissing
	}

	if err := runBuild(ctx, out, res.handlers.build, sitecmd.BuildSiteCommand{Force: force}); err != nil {
		fmt.Fprintf(errOut, "watch: initial build failed: %v\n", err)
	}
	if ctx.Err() != nil {
		return nil
	}

	opts := []watcher.Option{watcher.WithLogger(res.logger)}
	if res.outputDir != "" {
		opts = append(opts, watcher.WithFilter(watcher.IgnorePrefix(res.outputDir)))
	}
	w, err := watcher.New(res.debounce, opts...)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, root := range res.watchRoots {
		if err := w.AddRecursive(root); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "watch: watching %d directories\n", len(w.Roots()))

	return w.Run(ctx, func(ctx context.Context, paths []string) error {
		fmt.Fprintf(out, "watch: %d changed, rebuilding\n", len(paths))
		return runBuild(ctx, out, res.handlers.build, sitecmd.BuildSiteCommand{})
	})
}
