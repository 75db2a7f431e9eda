package publication

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSchedule reports a requested schedule time that is not strictly in the future.
var ErrInvalidSchedule = errors.New("schedule time must be in the future")

// ErrPublished reports a command that would move a published item back to
// scheduled. Unpublish it first.
var ErrPublished = errors.New("item is published")

// ErrInvariant reports a state that violates the publication record invariants.
var ErrInvariant = errors.New("publication invariant violated")

// State is the slice of a content item the decision functions look at.
type State struct {
	Status       Status
	ScheduledFor *time.Time
	PublishedAt  *time.Time
}

// Transition describes the state an item should move to.
//
// NoOp transitions carry the current state unchanged; callers skip the write.
type Transition struct {
	To           Status
	ScheduledFor *time.Time
	PublishedAt  *time.Time
	NoOp         bool
}

// State returns the state the transition produces.
func (t Transition) State() State {
	return State{Status: t.To, ScheduledFor: t.ScheduledFor, PublishedAt: t.PublishedAt}
}

// DecideOnCreate resolves the initial state for a new item. An absent or
// non-future requested time publishes immediately.
func DecideOnCreate(requested *time.Time, now time.Time) Transition {
	if requested == nil || !requested.After(now) {
		return published(now)
	}
	return scheduled(*requested)
}

// DecideSweepPromotion returns the promotion to published for a due item.
// Items that are not scheduled, or not yet due, report false.
func DecideSweepPromotion(item State, now time.Time) (Transition, bool) {
	if item.Status != StatusScheduled || item.ScheduledFor == nil {
		return Transition{}, false
	}
	if item.ScheduledFor.After(now) {
		return Transition{}, false
	}
	return published(now), true
}

// DecideReschedule moves a draft or scheduled item to scheduled at newTime,
// replacing any prior schedule. Published items are rejected; toggling them
// back to draft is the only way out of published.
func DecideReschedule(item State, newTime, now time.Time) (Transition, error) {
	if !newTime.After(now) {
		return Transition{}, fmt.Errorf("%w: %s is not after %s",
			ErrInvalidSchedule, newTime.UTC().Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	}
	if item.Status == StatusPublished {
		return Transition{}, fmt.Errorf("%w: unpublish it before rescheduling", ErrPublished)
	}
	return scheduled(newTime), nil
}

// DecidePublishNow publishes the item regardless of its prior state. An item
// that is already published keeps its publication timestamp.
func DecidePublishNow(item State, now time.Time) Transition {
	if item.Status == StatusPublished {
		return unchanged(item)
	}
	return published(now)
}

// DecideToggle flips between published and draft. Leaving published clears
// only the publication timestamp; entering published clears any schedule.
func DecideToggle(item State, now time.Time) Transition {
	if item.Status == StatusPublished {
		return Transition{To: StatusDraft}
	}
	return published(now)
}

// Validate checks the record invariants for a state.
func Validate(s State) error {
	if !s.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvariant, s.Status)
	}
	if (s.ScheduledFor != nil) != (s.Status == StatusScheduled) {
		return fmt.Errorf("%w: scheduled_for must be set only while scheduled (status %s)", ErrInvariant, s.Status)
	}
	if (s.PublishedAt != nil) != (s.Status == StatusPublished) {
		return fmt.Errorf("%w: published_at must be set only while published (status %s)", ErrInvariant, s.Status)
	}
	return nil
}

func published(now time.Time) Transition {
	at := now.UTC()
	return Transition{To: StatusPublished, PublishedAt: &at}
}

func scheduled(at time.Time) Transition {
	when := at.UTC()
	return Transition{To: StatusScheduled, ScheduledFor: &when}
}

func unchanged(item State) Transition {
	return Transition{
		To:           item.Status,
		ScheduledFor: item.ScheduledFor,
		PublishedAt:  item.PublishedAt,
		NoOp:         true,
	}
}
