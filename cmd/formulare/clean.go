package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	sitecmd "github.com/goliatone/go-formulare/internal/commands/site"
)

var errCleanHandlerMissing = errors.New("clean handler not configured")

func newCleanCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove generated pages from the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.module(false)
			if err != nil {
				return err
			}
			if res.handlers.clean == nil {
				return errCleanHandlerMissing
			}
			if err := res.handlers.clean.Execute(cmd.Context(), sitecmd.CleanSiteCommand{}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "clean: output removed")
			return nil
		},
	}
}
