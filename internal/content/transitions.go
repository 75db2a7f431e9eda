package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
)

// ApplyTransition writes tr to item id only if the row still has the status
// and version in expect. The write bumps the version and records the first
// publication time once. Losing a race is reported as OutcomeConflict, not as
// an error.
func (s *Store) ApplyTransition(ctx context.Context, id string, expect Expect, tr publication.Transition, now time.Time) (Outcome, error) {
	if tr.NoOp {
		return "", errors.New("apply transition: no-op transitions are not written")
	}
	if err := publication.Validate(tr.State()); err != nil {
		return "", fmt.Errorf("apply transition: %w", err)
	}

	res, err := s.execWithRetry(ctx,
		`UPDATE content_items
         SET status = ?,
             scheduled_for = ?,
             published_at = ?,
             first_published_at = COALESCE(first_published_at, ?),
             version = version + 1,
             updated_at = ?
         WHERE id = ? AND status = ? AND version = ?`,
		string(tr.To),
		nullableTime(tr.ScheduledFor),
		nullableTime(tr.PublishedAt),
		nullableTime(tr.PublishedAt),
		formatTime(now),
		id,
		string(expect.Status),
		expect.Version,
	)
	if err != nil {
		return "", unavailable("apply transition", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", unavailable("apply transition", err)
	}
	if affected > 0 {
		return OutcomeApplied, nil
	}

	var exists int
	err = s.queryRowWithRetry(ctx, func(row *sql.Row) error {
		return row.Scan(&exists)
	}, `SELECT COUNT(1) FROM content_items WHERE id = ?`, id)
	if err != nil {
		return "", unavailable("apply transition", err)
	}
	if exists == 0 {
		return OutcomeNotFound, nil
	}
	return OutcomeConflict, nil
}
