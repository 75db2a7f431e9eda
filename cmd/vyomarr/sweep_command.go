package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/itemaccess"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Publish every scheduled item that is due now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withItems(cmd, func(session itemaccess.Session) error {
				report, err := session.Access.Sweep(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, report)
				}
				out := cmd.OutOrStdout()
				if report.Skipped {
					fmt.Fprintln(out, "A sweep was already running; nothing done")
					return nil
				}
				fmt.Fprintf(out, "Sweep (%s): %d due, %d promoted, %d conflicts, %d vanished, %d failed\n",
					session.Backing, report.Due, report.Promoted, report.Conflicts, report.Vanished, report.Failed)
				if report.Error != "" {
					return fmt.Errorf("sweep: %s", report.Error)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
