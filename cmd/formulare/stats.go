package main

import (
	"errors"

	"github.com/spf13/cobra"

	sitecmd "github.com/goliatone/go-formulare/internal/commands/site"
)

var errStatsHandlerMissing = errors.New("stats handler not configured")

func newStatsCommand(a *app) *cobra.Command {
	var msg sitecmd.StatsCommand

	cmd := &cobra.Command{
		Use:   "stats [form]",
		Short: "Print translation completeness per form and language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.module(false)
			if err != nil {
				return err
			}
			if res.handlers.stats == nil {
				return errStatsHandlerMissing
			}
			if len(args) == 1 {
				msg.Form = args[0]
			}
			msg.Out = cmd.OutOrStdout()
			return res.handlers.stats.Execute(cmd.Context(), msg)
		},
	}
	cmd.Flags().StringVarP(&msg.Language, "lang", "l", "", "only report this language")
	cmd.Flags().BoolVarP(&msg.Verbose, "verbose", "v", false, "list missing keys")
	return cmd
}
