package content

import (
	"database/sql"
	"errors"
	"time"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
)

const itemColumns = "id, title, kind, status, scheduled_for, published_at, first_published_at, version, created_at, updated_at"

// timeLayout is fixed width so lexical order in SQL matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id              string
		title           string
		kind            string
		statusStr       string
		scheduledRaw    sql.NullString
		publishedRaw    sql.NullString
		firstPublishRaw sql.NullString
		version         int64
		createdRaw      string
		updatedRaw      string
	)
	if err := scanner.Scan(
		&id,
		&title,
		&kind,
		&statusStr,
		&scheduledRaw,
		&publishedRaw,
		&firstPublishRaw,
		&version,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:      id,
		Title:   title,
		Kind:    Kind(kind),
		Status:  publication.Status(statusStr),
		Version: version,
	}
	item.ScheduledFor = parseNullableTime(scheduledRaw)
	item.PublishedAt = parseNullableTime(publishedRaw)
	item.FirstPublishedAt = parseNullableTime(firstPublishRaw)
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func formatTime(value time.Time) string {
	return value.UTC().Format(timeLayout)
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return formatTime(*value)
}

func parseNullableTime(value sql.NullString) *time.Time {
	if !value.Valid {
		return nil
	}
	parsed, err := parseTimeString(value.String)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(timeLayout, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
