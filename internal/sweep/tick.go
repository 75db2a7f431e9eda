package sweep

import (
	"context"
	"time"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/logging"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
)

// Report summarizes one sweep tick.
type Report struct {
	Started   time.Time
	Finished  time.Time
	Due       int
	Promoted  int
	Conflicts int
	Vanished  int
	Failed    int
	// Skipped is set when the tick did not run because another was in progress.
	Skipped bool
	Err     error
}

// Tick promotes every due item once. Failures on one item do not stop the
// others; a failure to list due items is reported in Report.Err.
func (s *Scheduler) Tick(ctx context.Context) (report Report) {
	if !s.tickMu.TryLock() {
		s.skipped.Add(1)
		s.logger.Debug("sweep still running; tick skipped", logging.String(logging.FieldEventType, "sweep_skipped"))
		return Report{Started: s.clock().UTC(), Skipped: true}
	}
	defer s.tickMu.Unlock()

	now := s.clock().UTC()
	report = Report{Started: now}
	defer func() {
		report.Finished = s.clock().UTC()
		s.record(report)
		if s.onReport != nil {
			s.onReport(ctx, report)
		}
	}()

	due, err := s.store.FindDue(ctx, now)
	if err != nil {
		report.Err = err
		logging.ErrorWithContext(s.logger, "sweep could not list due items", "sweep_query_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the content database; the next tick retries"),
		)
		return report
	}
	report.Due = len(due)

	for _, item := range due {
		if ctx.Err() != nil {
			report.Err = ctx.Err()
			break
		}
		s.promote(ctx, item, now, &report)
	}

	if report.Due > 0 {
		s.logger.Info("sweep tick complete",
			logging.Int("due", report.Due),
			logging.Int("promoted", report.Promoted),
			logging.Int("conflicts", report.Conflicts),
			logging.Int("vanished", report.Vanished),
			logging.Int("failed", report.Failed),
			logging.String(logging.FieldEventType, "sweep_tick"),
		)
	} else {
		s.logger.Debug("sweep tick complete; nothing due", logging.String(logging.FieldEventType, "sweep_tick"))
	}
	return report
}

func (s *Scheduler) promote(ctx context.Context, item *content.Item, now time.Time, report *Report) {
	logger := logging.WithContext(logging.WithItemID(ctx, item.ID), s.logger)

	tr, ok := publication.DecideSweepPromotion(item.State(), now)
	if !ok {
		// Listed as due but no longer promotable; treat as a lost race.
		report.Conflicts++
		return
	}

	outcome, err := s.store.ApplyTransition(ctx, item.ID, item.Expect(), tr, now)
	if err != nil {
		report.Failed++
		logging.WarnWithContext(logger, "sweep promotion failed; item stays scheduled", "sweep_item_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the next tick retries this item"),
			logging.String(logging.FieldImpact, "publication delayed until the next tick"),
		)
		return
	}

	switch outcome {
	case content.OutcomeApplied:
		report.Promoted++
		logger.Info("scheduled item published",
			logging.String("title", item.Title),
			logging.Time("scheduled_for", *item.ScheduledFor),
			logging.String(logging.FieldEventType, "item_published"),
		)
		if s.onPublished != nil {
			s.onPublished(ctx, item.After(tr, now))
		}
	case content.OutcomeConflict:
		report.Conflicts++
		logger.Debug("item changed before promotion; leaving it",
			logging.String(logging.FieldOutcome, string(outcome)),
			logging.String(logging.FieldEventType, "sweep_conflict"),
		)
	case content.OutcomeNotFound:
		report.Vanished++
		logger.Debug("item removed before promotion",
			logging.String(logging.FieldOutcome, string(outcome)),
			logging.String(logging.FieldEventType, "sweep_vanished"),
		)
	}
}
