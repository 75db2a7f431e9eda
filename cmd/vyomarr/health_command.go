package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
)

func newItemsHealthCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the content database schema and integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := content.Open(cfg)
			if err != nil {
				return fmt.Errorf("open content store: %w", err)
			}
			defer store.Close()

			health, checkErr := store.CheckHealth(cmd.Context())
			if jsonOut {
				if err := writeJSON(cmd, health); err != nil {
					return err
				}
				return checkErr
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			writeSection(out, "Database", colorize)
			fmt.Fprintln(out, renderValueLine("Path", health.DBPath))
			fmt.Fprintln(out, renderValueLine("Schema", dash(health.SchemaVersion)))
			fmt.Fprintln(out, renderValueLine("Items", fmt.Sprintf("%d", health.TotalItems)))
			fmt.Fprintln(out, renderStatusLine("Readable", healthKind(health.DatabaseReadable), yesNo(health.DatabaseReadable), colorize))
			fmt.Fprintln(out, renderStatusLine("Integrity", healthKind(health.IntegrityCheck), yesNo(health.IntegrityCheck), colorize))
			if len(health.MissingColumns) > 0 {
				fmt.Fprintln(out, renderStatusLine("Columns", statusError, "missing "+strings.Join(health.MissingColumns, ", "), colorize))
			}
			if checkErr != nil {
				return fmt.Errorf("database health: %w", checkErr)
			}
			if len(health.MissingColumns) > 0 || !health.IntegrityCheck {
				return fmt.Errorf("database health check failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func healthKind(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusError
}
