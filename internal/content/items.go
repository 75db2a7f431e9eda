package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
)

// Create inserts a new item in the state described by initial.
func (s *Store) Create(ctx context.Context, draft NewItem, initial publication.Transition, now time.Time) (*Item, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidItem)
	}
	kind, ok := ParseKind(string(draft.Kind))
	if !ok {
		return nil, fmt.Errorf("%w: unknown content kind %q", ErrInvalidItem, draft.Kind)
	}
	state := initial.State()
	if err := publication.Validate(state); err != nil {
		return nil, err
	}

	created := now.UTC()
	item := &Item{
		ID:               uuid.NewString(),
		Title:            title,
		Kind:             kind,
		Status:           state.Status,
		ScheduledFor:     state.ScheduledFor,
		PublishedAt:      state.PublishedAt,
		FirstPublishedAt: state.PublishedAt,
		Version:          1,
		CreatedAt:        created,
		UpdatedAt:        created,
	}

	_, err := s.execWithRetry(ctx,
		`INSERT INTO content_items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Title,
		string(item.Kind),
		string(item.Status),
		nullableTime(item.ScheduledFor),
		nullableTime(item.PublishedAt),
		nullableTime(item.FirstPublishedAt),
		item.Version,
		formatTime(item.CreatedAt),
		formatTime(item.UpdatedAt),
	)
	if err != nil {
		return nil, unavailable("insert content item", err)
	}
	return item, nil
}

// GetByID fetches an item by identifier. A missing item returns nil, nil.
func (s *Store) GetByID(ctx context.Context, id string) (*Item, error) {
	var item *Item
	err := s.queryRowWithRetry(ctx, func(row *sql.Row) error {
		var scanErr error
		item, scanErr = scanItem(row)
		return scanErr
	}, `SELECT `+itemColumns+` FROM content_items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get content item", err)
	}
	return item, nil
}

// List returns items, optionally filtered by status, newest first.
func (s *Store) List(ctx context.Context, statuses ...publication.Status) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM content_items`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += ` ORDER BY created_at DESC, id`
	items, err := s.queryItems(ctx, query, args...)
	if err != nil {
		return nil, unavailable("list content items", err)
	}
	return items, nil
}

// FindDue returns scheduled items whose time is at or before now, oldest schedule first.
func (s *Store) FindDue(ctx context.Context, now time.Time) ([]*Item, error) {
	items, err := s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM content_items
         WHERE status = ? AND scheduled_for IS NOT NULL AND scheduled_for <= ?
         ORDER BY scheduled_for, id`,
		string(publication.StatusScheduled),
		formatTime(now),
	)
	if err != nil {
		return nil, unavailable("find due items", err)
	}
	return items, nil
}

// NextScheduled returns the earliest pending schedule time, if any.
func (s *Store) NextScheduled(ctx context.Context) (*time.Time, error) {
	var raw sql.NullString
	err := s.queryRowWithRetry(ctx, func(row *sql.Row) error {
		return row.Scan(&raw)
	}, `SELECT MIN(scheduled_for) FROM content_items WHERE status = ?`, string(publication.StatusScheduled))
	if err != nil {
		return nil, unavailable("next scheduled item", err)
	}
	return parseNullableTime(raw), nil
}

// Remove deletes an item. Removing a missing item is not an error.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM content_items WHERE id = ?`, id)
	if err != nil {
		return false, unavailable("remove content item", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("remove content item", err)
	}
	return affected > 0, nil
}

// Stats returns a count of items grouped by status.
func (s *Store) Stats(ctx context.Context) (map[publication.Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM content_items GROUP BY status`)
	if err != nil {
		return nil, unavailable("content stats", err)
	}
	defer rows.Close()

	stats := make(map[publication.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, unavailable("content stats", err)
		}
		stats[publication.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("content stats", err)
	}
	return stats, nil
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]*Item, error) {
	ctx = ensureContext(ctx)
	var items []*Item
	err := retryOnBusy(ctx, func() error {
		items = items[:0]
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			item, err := scanItem(rows)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
