package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/api"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/itemaccess"
)

func newItemsCommand(ctx *commandContext) *cobra.Command {
	itemsCmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Create, inspect, and publish content items",
	}

	itemsCmd.AddCommand(newItemsListCommand(ctx))
	itemsCmd.AddCommand(newItemsShowCommand(ctx))
	itemsCmd.AddCommand(newItemsCreateCommand(ctx))
	itemsCmd.AddCommand(newItemsPublishCommand(ctx))
	itemsCmd.AddCommand(newItemsRescheduleCommand(ctx))
	itemsCmd.AddCommand(newItemsToggleCommand(ctx))
	itemsCmd.AddCommand(newItemsHealthCommand(ctx))

	return itemsCmd
}

func newItemsListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content items, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withItems(cmd, func(session itemaccess.Session) error {
				items, err := session.Access.List(cmd.Context(), statuses)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, api.ItemListResponse{Items: items})
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No content items")
					return nil
				}
				fmt.Fprintln(out, renderItemTable(items))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by status (draft, scheduled, published)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newItemsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one content item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withItems(cmd, func(session itemaccess.Session) error {
				item, err := session.Access.Get(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, api.ItemResponse{Item: *item})
				}
				printItemDetail(cmd.OutOrStdout(), *item)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newItemsCreateCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var when scheduleFlags
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create an item, published now unless scheduled for later",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.CreateItemRequest{
				Title: strings.Join(args, " "),
				Kind:  kind,
			}
			at, set, err := when.resolve(time.Now())
			if err != nil {
				return err
			}
			if set {
				req.ScheduledFor = at.UTC().Format(time.RFC3339Nano)
			}
			return ctx.withItems(cmd, func(session itemaccess.Session) error {
				item, err := session.Access.Create(cmd.Context(), req)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, api.ItemResponse{Item: *item})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q (%s)\n", item.ID, item.Title, describeState(*item))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Content kind (post, page)")
	when.register(cmd, false)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newItemsPublishCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish an item immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withItems(cmd, func(session itemaccess.Session) error {
				resp, err := session.Access.PublishNow(cmd.Context(), strings.TrimSpace(args[0]))
				return printCommandResult(cmd, "publish", resp, err, jsonOut)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newItemsRescheduleCommand(ctx *commandContext) *cobra.Command {
	var when scheduleFlags
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "reschedule <id>",
		Short: "Schedule an item for a future time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, set, err := when.resolve(time.Now())
			if err != nil {
				return err
			}
			if !set {
				return errors.New("a schedule time is required (use --at or --in)")
			}
			return ctx.withItems(cmd, func(session itemaccess.Session) error {
				resp, err := session.Access.Reschedule(cmd.Context(), strings.TrimSpace(args[0]), at)
				return printCommandResult(cmd, "reschedule", resp, err, jsonOut)
			})
		},
	}

	when.register(cmd, true)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newItemsToggleCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip an item between published and draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withItems(cmd, func(session itemaccess.Session) error {
				resp, err := session.Access.Toggle(cmd.Context(), strings.TrimSpace(args[0]))
				return printCommandResult(cmd, "toggle", resp, err, jsonOut)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

// scheduleFlags accepts either an absolute --at time or a relative --in offset.
type scheduleFlags struct {
	at string
	in time.Duration
}

func (f *scheduleFlags) register(cmd *cobra.Command, required bool) {
	usage := "Schedule time (RFC3339)"
	if !required {
		usage += "; omit to publish now"
	}
	cmd.Flags().StringVar(&f.at, "at", "", usage)
	cmd.Flags().DurationVar(&f.in, "in", 0, "Schedule relative to now (e.g. 90m)")
	cmd.MarkFlagsMutuallyExclusive("at", "in")
}

func (f *scheduleFlags) resolve(now time.Time) (time.Time, bool, error) {
	if value := strings.TrimSpace(f.at); value != "" {
		at, err := api.ParseTime(value)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid --at %q: expected RFC3339 such as 2026-01-02T15:04:05Z", value)
		}
		return at, true, nil
	}
	if f.in != 0 {
		return now.Add(f.in).UTC(), true, nil
	}
	return time.Time{}, false, nil
}
