package editorial

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/logging"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
)

// Store is the subset of the content store the commands use.
type Store interface {
	Create(ctx context.Context, draft content.NewItem, initial publication.Transition, now time.Time) (*content.Item, error)
	GetByID(ctx context.Context, id string) (*content.Item, error)
	List(ctx context.Context, statuses ...publication.Status) ([]*content.Item, error)
	ApplyTransition(ctx context.Context, id string, expect content.Expect, tr publication.Transition, now time.Time) (content.Outcome, error)
}

// Outcome reports how a command resolved.
type Outcome string

const (
	// OutcomeApplied means the command's transition was written.
	OutcomeApplied Outcome = "applied"
	// OutcomeUnchanged means the item was already in the requested state.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeSuperseded means another writer changed the item first; Item holds its current state.
	OutcomeSuperseded Outcome = "superseded"
)

// Result is the outcome of a command together with the item afterwards.
type Result struct {
	Outcome Outcome
	Item    *content.Item
}

// CreateRequest describes a new item.
type CreateRequest struct {
	Title         string
	Kind          content.Kind
	RequestedTime *time.Time
}

// Options configures a Service.
type Options struct {
	Clock  func() time.Time
	Logger *slog.Logger
	// OnPublished runs after a command moves an item into published.
	OnPublished func(ctx context.Context, item content.Item)
	// OnScheduled runs after a command leaves an item scheduled.
	OnScheduled func(ctx context.Context, item content.Item)
}

// Service runs editorial commands.
type Service struct {
	store       Store
	clock       func() time.Time
	logger      *slog.Logger
	onPublished func(ctx context.Context, item content.Item)
	onScheduled func(ctx context.Context, item content.Item)
}

// NewService constructs a Service over store.
func NewService(store Store, opts Options) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:       store,
		clock:       clock,
		logger:      logging.NewComponentLogger(opts.Logger, "editorial"),
		onPublished: opts.OnPublished,
		onScheduled: opts.OnScheduled,
	}
}

// Create stores a new item, published immediately unless RequestedTime is in the future.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*content.Item, error) {
	now := s.clock().UTC()
	item, err := s.store.Create(ctx, content.NewItem{Title: req.Title, Kind: req.Kind}, publication.DecideOnCreate(req.RequestedTime, now), now)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	logger := logging.WithContext(logging.WithItemID(ctx, item.ID), s.logger)
	logger.Info("content item created",
		logging.String("title", item.Title),
		logging.String("status", item.Status.String()),
		logging.String(logging.FieldEventType, "item_created"),
	)
	s.notify(ctx, *item)
	return item, nil
}

// Get returns an item by id.
func (s *Service) Get(ctx context.Context, id string) (*content.Item, error) {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return item, nil
}

// List returns items, optionally filtered by status.
func (s *Service) List(ctx context.Context, statuses ...publication.Status) ([]*content.Item, error) {
	items, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// PublishNow publishes an item immediately. Publishing a published item changes nothing.
func (s *Service) PublishNow(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "publish", id, func(item *content.Item, now time.Time) (publication.Transition, error) {
		return publication.DecidePublishNow(item.State(), now), nil
	})
}

// Reschedule schedules an item for at, replacing any prior schedule. Times
// that are not in the future fail with publication.ErrInvalidSchedule and
// leave the item unchanged.
func (s *Service) Reschedule(ctx context.Context, id string, at time.Time) (Result, error) {
	return s.run(ctx, "reschedule", id, func(item *content.Item, now time.Time) (publication.Transition, error) {
		return publication.DecideReschedule(item.State(), at, now)
	})
}

// Toggle flips an item between published and draft. A scheduled item is published.
func (s *Service) Toggle(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "toggle", id, func(item *content.Item, now time.Time) (publication.Transition, error) {
		return publication.DecideToggle(item.State(), now), nil
	})
}

type decideFunc func(item *content.Item, now time.Time) (publication.Transition, error)

func (s *Service) run(ctx context.Context, command, id string, decide decideFunc) (Result, error) {
	ctx = logging.WithItemID(ctx, id)
	logger := logging.WithContext(ctx, s.logger).With(logging.String("command", command))

	item, err := s.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}

	now := s.clock().UTC()
	tr, err := decide(item, now)
	if err != nil {
		logger.Info("command rejected",
			logging.Error(err),
			logging.String(logging.FieldEventType, "command_rejected"),
		)
		return Result{}, err
	}
	if tr.NoOp {
		return Result{Outcome: OutcomeUnchanged, Item: item}, nil
	}

	outcome, err := s.store.ApplyTransition(ctx, id, item.Expect(), tr, now)
	if err != nil {
		return Result{}, fmt.Errorf("%s item: %w", command, err)
	}

	switch outcome {
	case content.OutcomeNotFound:
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case content.OutcomeConflict:
		current, err := s.Get(ctx, id)
		if err != nil {
			return Result{}, err
		}
		logger.Info("item changed concurrently; command superseded",
			logging.String("status", current.Status.String()),
			logging.String(logging.FieldOutcome, string(OutcomeSuperseded)),
			logging.String(logging.FieldEventType, "command_superseded"),
		)
		return Result{Outcome: OutcomeSuperseded, Item: current}, nil
	}

	updated := item.After(tr, now)
	logger.Info("command applied",
		logging.String("from", item.Status.String()),
		logging.String("to", updated.Status.String()),
		logging.String(logging.FieldOutcome, string(OutcomeApplied)),
		logging.String(logging.FieldEventType, "command_applied"),
	)
	s.notify(ctx, updated)
	return Result{Outcome: OutcomeApplied, Item: &updated}, nil
}

func (s *Service) notify(ctx context.Context, item content.Item) {
	switch {
	case item.Status == publication.StatusPublished && s.onPublished != nil:
		s.onPublished(ctx, item)
	case item.Status == publication.StatusScheduled && s.onScheduled != nil:
		s.onScheduled(ctx, item)
	}
}
