package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/api"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/config"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/preflight"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, scheduler, and item status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			status, err := client.Status(cmd.Context())
			daemonUp := err == nil
			if err != nil {
				if !errors.Is(err, api.ErrDaemonUnreachable) {
					return err
				}
				status, err = offlineStatus(cmd, cfg)
				if err != nil {
					return err
				}
			}

			if jsonOut {
				return writeJSON(cmd, status)
			}
			printStatus(cmd, cfg, status, daemonUp)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func offlineStatus(cmd *cobra.Command, cfg *config.Config) (*api.DaemonStatus, error) {
	store, err := content.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open content store: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return nil, err
	}
	next, err := store.NextScheduled(cmd.Context())
	if err != nil {
		return nil, err
	}
	status := &api.DaemonStatus{
		DatabasePath: store.Path(),
		LockFilePath: cfg.LockPath(),
		ItemCounts:   api.FromStats(stats),
		Scheduler: api.SchedulerStatus{
			IntervalSeconds: int64(cfg.SweepInterval() / time.Second),
		},
	}
	if next != nil {
		status.Scheduler.NextScheduled = next.UTC().Format(time.RFC3339)
	}
	return status, nil
}

func printStatus(cmd *cobra.Command, cfg *config.Config, status *api.DaemonStatus, daemonUp bool) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	writeSection(out, "Daemon", colorize)
	if daemonUp {
		fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, fmt.Sprintf("running (pid %d)", status.PID), colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "not reachable at "+cfg.Paths.APIBind, colorize))
	}
	fmt.Fprintln(out, renderValueLine("Database", status.DatabasePath))
	fmt.Fprintln(out, renderValueLine("Lock file", status.LockFilePath))
	fmt.Fprintln(out)

	sched := status.Scheduler
	writeSection(out, "Scheduler", colorize)
	switch {
	case sched.Running:
		fmt.Fprintln(out, renderStatusLine("Sweep", statusOK, fmt.Sprintf("every %ds", sched.IntervalSeconds), colorize))
	case daemonUp:
		fmt.Fprintln(out, renderStatusLine("Sweep", statusWarn, "disabled", colorize))
	default:
		fmt.Fprintln(out, renderStatusLine("Sweep", statusInfo, "runs with the daemon", colorize))
	}
	fmt.Fprintln(out, renderValueLine("Next scheduled", dash(sched.NextScheduled)))
	if sched.LastTick != "" {
		fmt.Fprintln(out, renderValueLine("Last tick", sched.LastTick))
	}
	if report := sched.LastReport; report != nil {
		summary := fmt.Sprintf("%d due, %d promoted, %d conflicts, %d failed", report.Due, report.Promoted, report.Conflicts, report.Failed)
		if report.Error != "" {
			fmt.Fprintln(out, renderStatusLine("Last sweep", statusError, report.Error, colorize))
		} else {
			fmt.Fprintln(out, renderValueLine("Last sweep", summary))
		}
	}
	if sched.Skipped > 0 {
		fmt.Fprintln(out, renderValueLine("Skipped ticks", fmt.Sprintf("%d", sched.Skipped)))
	}
	fmt.Fprintln(out)

	writeSection(out, "Items", colorize)
	for _, s := range publication.AllStatuses() {
		fmt.Fprintln(out, renderValueLine(statusLabel(s.String()), fmt.Sprintf("%d", status.ItemCounts[s.String()])))
	}

	if !daemonUp {
		fmt.Fprintln(out)
		writeSection(out, "Preflight", colorize)
		for _, result := range preflight.RunAll(cmd.Context(), cfg) {
			kind := statusOK
			if !result.Passed {
				kind = statusError
				if result.Optional {
					kind = statusWarn
				}
			}
			fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
		}
	}
}
