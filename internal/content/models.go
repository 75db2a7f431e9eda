package content

import (
	"time"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
)

// Kind labels what sort of content an item is. It is display-only.
type Kind string

const (
	KindPost Kind = "post"
	KindPage Kind = "page"
)

// ParseKind returns the kind for value, defaulting empty input to KindPost.
func ParseKind(value string) (Kind, bool) {
	switch Kind(value) {
	case "", KindPost:
		return KindPost, true
	case KindPage:
		return KindPage, true
	default:
		return "", false
	}
}

// Item is a publishable content record.
type Item struct {
	ID               string
	Title            string
	Kind             Kind
	Status           publication.Status
	ScheduledFor     *time.Time
	PublishedAt      *time.Time
	FirstPublishedAt *time.Time
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// State returns the fields the transition engine decides on.
func (i Item) State() publication.State {
	return publication.State{
		Status:       i.Status,
		ScheduledFor: i.ScheduledFor,
		PublishedAt:  i.PublishedAt,
	}
}

// Expect returns the conditional-update expectation for the item as observed.
func (i Item) Expect() Expect {
	return Expect{Status: i.Status, Version: i.Version}
}

// NewItem carries the caller supplied fields of an item being created.
type NewItem struct {
	Title string
	Kind  Kind
}

// Expect is the state a conditional update requires the row to still be in.
type Expect struct {
	Status  publication.Status
	Version int64
}

// Outcome reports how a conditional update resolved.
type Outcome string

const (
	// OutcomeApplied means the row matched the expectation and was updated.
	OutcomeApplied Outcome = "applied"
	// OutcomeConflict means the row exists but another writer changed it first.
	OutcomeConflict Outcome = "conflict"
	// OutcomeNotFound means the row no longer exists.
	OutcomeNotFound Outcome = "not_found"
)

// DatabaseHealth captures diagnostic information about the content database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	MissingColumns   []string
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}

// After returns the item as a successful ApplyTransition of tr at now leaves it.
func (i Item) After(tr publication.Transition, now time.Time) Item {
	i.Status = tr.To
	i.ScheduledFor = tr.ScheduledFor
	i.PublishedAt = tr.PublishedAt
	if i.FirstPublishedAt == nil {
		i.FirstPublishedAt = tr.PublishedAt
	}
	i.Version++
	i.UpdatedAt = now.UTC()
	return i
}
