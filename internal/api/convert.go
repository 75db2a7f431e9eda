package api

import (
	"time"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/sweep"
)

// FromItem converts a content item into its transport representation.
func FromItem(item *content.Item) ContentItem {
	if item == nil {
		return ContentItem{}
	}
	return ContentItem{
		ID:               item.ID,
		Title:            item.Title,
		Kind:             string(item.Kind),
		Status:           item.Status.String(),
		ScheduledFor:     formatTimePtr(item.ScheduledFor),
		PublishedAt:      formatTimePtr(item.PublishedAt),
		FirstPublishedAt: formatTimePtr(item.FirstPublishedAt),
		Version:          item.Version,
		CreatedAt:        formatTime(item.CreatedAt),
		UpdatedAt:        formatTime(item.UpdatedAt),
	}
}

// FromItems converts a slice of items, preserving order.
func FromItems(items []*content.Item) []ContentItem {
	out := make([]ContentItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromItem(item))
	}
	return out
}

// FromReport converts a sweep report.
func FromReport(report sweep.Report) SweepReport {
	out := SweepReport{
		Started:   formatTime(report.Started),
		Finished:  formatTime(report.Finished),
		Due:       report.Due,
		Promoted:  report.Promoted,
		Conflicts: report.Conflicts,
		Vanished:  report.Vanished,
		Failed:    report.Failed,
		Skipped:   report.Skipped,
	}
	if report.Err != nil {
		out.Error = report.Err.Error()
	}
	return out
}

// FromSnapshot converts a sweep scheduler snapshot.
func FromSnapshot(snap sweep.Snapshot) SchedulerStatus {
	out := SchedulerStatus{
		Running:         snap.Running,
		IntervalSeconds: int64(snap.Interval / time.Second),
		LastTick:        formatTime(snap.LastTick),
		Skipped:         snap.Skipped,
	}
	if snap.LastReport != nil {
		report := FromReport(*snap.LastReport)
		out.LastReport = &report
	}
	return out
}

// FromStats converts per-status counts, including zero entries for every status.
func FromStats(stats map[publication.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for _, status := range publication.AllStatuses() {
		out[status.String()] = stats[status]
	}
	return out
}

// ParseTime parses an RFC3339 timestamp supplied by a client.
func ParseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
