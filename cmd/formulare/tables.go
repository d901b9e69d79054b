package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	sitecmd "github.com/goliatone/go-formulare/internal/commands/site"
	"github.com/goliatone/go-formulare/internal/maintenance"
)

var errTablesHandlerMissing = errors.New("tables handler not configured")

func newTablesCommand(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Maintain translation tables in the data directory",
	}
	cmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "report changes without writing tables")

	chore := func(use, short, action string, args cobra.PositionalArgs, bind func(*sitecmd.TablesCommand, []string)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  args,
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := a.module(dryRun)
				if err != nil {
					return err
				}
				if res.handlers.tables == nil {
					return errTablesHandlerMissing
				}
				msg := sitecmd.TablesCommand{Action: action}
				bind(&msg, args)
				msg.Changes = func(changes []maintenance.Change) {
					printChanges(cmd.OutOrStdout(), action, dryRun, changes)
				}
				return res.handlers.tables.Execute(cmd.Context(), msg)
			},
		}
	}

	cmd.AddCommand(
		chore("strip [lang]", "Drop entries whose value equals the key", sitecmd.TablesStrip,
			cobra.MaximumNArgs(1),
			func(msg *sitecmd.TablesCommand, args []string) {
				if len(args) > 0 {
					msg.Language = args[0]
				}
			}),
		chore("normalize [form] [lang]", "Drop empty values and keys unknown to the form", sitecmd.TablesNormalize,
			cobra.MaximumNArgs(2),
			func(msg *sitecmd.TablesCommand, args []string) {
				if len(args) > 0 {
					msg.Form = args[0]
				}
				if len(args) > 1 {
					msg.Language = args[1]
				}
			}),
		chore("seed <form>", "Write the base-language table mapping every key to itself", sitecmd.TablesSeed,
			cobra.ExactArgs(1),
			func(msg *sitecmd.TablesCommand, args []string) {
				msg.Form = args[0]
			}),
		chore("fill <form> <lang>", "Fill missing values from the language's other tables", sitecmd.TablesFill,
			cobra.ExactArgs(2),
			func(msg *sitecmd.TablesCommand, args []string) {
				msg.Form = args[0]
				msg.Language = args[1]
			}),
	)
	return cmd
}

func printChanges(out io.Writer, action string, dryRun bool, changes []maintenance.Change) {
	verb := "updated"
	if dryRun {
		verb = "would write"
	}
	touched := 0
	for _, change := range changes {
		if change.Path == "" {
			continue
		}
		if !change.Changed && !dryRun {
			continue
		}
		touched++
		line := fmt.Sprintf("%s: %s %s", action, verb, change.Path)
		if len(change.Removed) > 0 {
			line += " (removed " + strings.Join(change.Removed, ", ") + ")"
		}
		fmt.Fprintln(out, line)
	}
	if touched == 0 {
		fmt.Fprintf(out, "%s: nothing to do\n", action)
	}
}
