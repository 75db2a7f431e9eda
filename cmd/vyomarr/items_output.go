package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/api"
)

var titleCaser = cases.Title(language.English)

func statusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return "Unknown"
	}
	return titleCaser.String(status)
}

func shortItemID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func renderItemTable(items []api.ContentItem) string {
	headers := []string{"ID", "Title", "Kind", "Status", "Scheduled For", "Published At", "Ver"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			shortItemID(item.ID),
			item.Title,
			item.Kind,
			statusLabel(item.Status),
			dash(item.ScheduledFor),
			dash(item.PublishedAt),
			fmt.Sprintf("%d", item.Version),
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
	return renderTable(headers, rows, aligns, fmt.Sprintf("%d items", len(items)))
}

func printItemDetail(out io.Writer, item api.ContentItem) {
	fmt.Fprintf(out, "ID:                 %s\n", item.ID)
	fmt.Fprintf(out, "Title:              %s\n", item.Title)
	fmt.Fprintf(out, "Kind:               %s\n", item.Kind)
	fmt.Fprintf(out, "Status:             %s\n", statusLabel(item.Status))
	fmt.Fprintf(out, "Scheduled for:      %s\n", dash(item.ScheduledFor))
	fmt.Fprintf(out, "Published at:       %s\n", dash(item.PublishedAt))
	fmt.Fprintf(out, "First published at: %s\n", dash(item.FirstPublishedAt))
	fmt.Fprintf(out, "Version:            %d\n", item.Version)
	fmt.Fprintf(out, "Created:            %s\n", dash(item.CreatedAt))
	fmt.Fprintf(out, "Updated:            %s\n", dash(item.UpdatedAt))
}

func describeState(item api.ContentItem) string {
	switch item.Status {
	case "scheduled":
		return "scheduled for " + item.ScheduledFor
	case "published":
		return "published at " + item.PublishedAt
	default:
		return strings.ToLower(statusLabel(item.Status))
	}
}

func printCommandResult(cmd *cobra.Command, command string, resp *api.CommandResponse, err error, jsonOut bool) error {
	if err != nil {
		return err
	}
	if jsonOut {
		return writeJSON(cmd, resp)
	}
	out := cmd.OutOrStdout()
	switch resp.Outcome {
	case "applied":
		fmt.Fprintf(out, "Item %s: %s\n", shortItemID(resp.Item.ID), describeState(resp.Item))
	case "unchanged":
		fmt.Fprintf(out, "Item %s already %s; nothing to %s\n", shortItemID(resp.Item.ID), describeState(resp.Item), command)
	case "superseded":
		fmt.Fprintf(out, "Item %s changed concurrently and is now %s; %s not applied\n", shortItemID(resp.Item.ID), describeState(resp.Item), command)
	default:
		fmt.Fprintf(out, "Item %s: %s (%s)\n", shortItemID(resp.Item.ID), describeState(resp.Item), resp.Outcome)
	}
	return nil
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
