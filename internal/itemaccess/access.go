// Package itemaccess gives the CLI one set of content operations whether a
// daemon is serving the API or the database has to be opened directly.
package itemaccess

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/api"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/editorial"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/sweep"
)

// Access provides content operations regardless of API or direct store backing.
type Access interface {
	Stats(ctx context.Context) (map[string]int, error)
	List(ctx context.Context, statuses []string) ([]api.ContentItem, error)
	Get(ctx context.Context, id string) (*api.ContentItem, error)
	Create(ctx context.Context, req api.CreateItemRequest) (*api.ContentItem, error)
	PublishNow(ctx context.Context, id string) (*api.CommandResponse, error)
	Reschedule(ctx context.Context, id string, at time.Time) (*api.CommandResponse, error)
	Toggle(ctx context.Context, id string) (*api.CommandResponse, error)
	Sweep(ctx context.Context) (*api.SweepReport, error)
}

// NewAPIAccess returns an Access backed by the daemon HTTP API.
func NewAPIAccess(client *api.Client) Access {
	return &apiAccess{client: client}
}

// NewStoreAccess returns an Access backed by direct DB access. clock may be nil.
func NewStoreAccess(store *content.Store, logger *slog.Logger, clock func() time.Time) Access {
	return &storeAccess{
		store:   store,
		service: editorial.NewService(store, editorial.Options{Clock: clock, Logger: logger}),
		sweeper: sweep.New(store, sweep.Options{Clock: clock, Logger: logger}),
	}
}

type apiAccess struct {
	client *api.Client
}

func (a *apiAccess) Stats(ctx context.Context) (map[string]int, error) {
	status, err := a.client.Status(ctx)
	if err != nil {
		return nil, err
	}
	return status.ItemCounts, nil
}

func (a *apiAccess) List(ctx context.Context, statuses []string) ([]api.ContentItem, error) {
	return a.client.ListItems(ctx, statuses)
}

func (a *apiAccess) Get(ctx context.Context, id string) (*api.ContentItem, error) {
	return a.client.GetItem(ctx, id)
}

func (a *apiAccess) Create(ctx context.Context, req api.CreateItemRequest) (*api.ContentItem, error) {
	return a.client.CreateItem(ctx, req)
}

func (a *apiAccess) PublishNow(ctx context.Context, id string) (*api.CommandResponse, error) {
	return a.client.PublishNow(ctx, id)
}

func (a *apiAccess) Reschedule(ctx context.Context, id string, at time.Time) (*api.CommandResponse, error) {
	return a.client.Reschedule(ctx, id, at)
}

func (a *apiAccess) Toggle(ctx context.Context, id string) (*api.CommandResponse, error) {
	return a.client.Toggle(ctx, id)
}

func (a *apiAccess) Sweep(ctx context.Context) (*api.SweepReport, error) {
	return a.client.Sweep(ctx)
}

type storeAccess struct {
	store   *content.Store
	service *editorial.Service
	sweeper *sweep.Scheduler
}

func (a *storeAccess) Stats(ctx context.Context) (map[string]int, error) {
	stats, err := a.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return api.FromStats(stats), nil
}

func (a *storeAccess) List(ctx context.Context, statuses []string) ([]api.ContentItem, error) {
	filter := make([]publication.Status, 0, len(statuses))
	for _, value := range statuses {
		status, ok := publication.ParseStatus(value)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", strings.TrimSpace(value))
		}
		filter = append(filter, status)
	}
	items, err := a.service.List(ctx, filter...)
	if err != nil {
		return nil, err
	}
	return api.FromItems(items), nil
}

func (a *storeAccess) Get(ctx context.Context, id string) (*api.ContentItem, error) {
	item, err := a.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := api.FromItem(item)
	return &out, nil
}

func (a *storeAccess) Create(ctx context.Context, req api.CreateItemRequest) (*api.ContentItem, error) {
	create := editorial.CreateRequest{Title: req.Title, Kind: content.Kind(strings.TrimSpace(req.Kind))}
	if value := strings.TrimSpace(req.ScheduledFor); value != "" {
		at, err := api.ParseTime(value)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule time %q: %w", value, err)
		}
		create.RequestedTime = &at
	}
	item, err := a.service.Create(ctx, create)
	if err != nil {
		return nil, err
	}
	out := api.FromItem(item)
	return &out, nil
}

func (a *storeAccess) PublishNow(ctx context.Context, id string) (*api.CommandResponse, error) {
	return commandResponse(a.service.PublishNow(ctx, id))
}

func (a *storeAccess) Reschedule(ctx context.Context, id string, at time.Time) (*api.CommandResponse, error) {
	return commandResponse(a.service.Reschedule(ctx, id, at))
}

func (a *storeAccess) Toggle(ctx context.Context, id string) (*api.CommandResponse, error) {
	return commandResponse(a.service.Toggle(ctx, id))
}

func (a *storeAccess) Sweep(ctx context.Context) (*api.SweepReport, error) {
	report := api.FromReport(a.sweeper.Tick(ctx))
	return &report, nil
}

func commandResponse(result editorial.Result, err error) (*api.CommandResponse, error) {
	if err != nil {
		return nil, err
	}
	return &api.CommandResponse{Outcome: string(result.Outcome), Item: api.FromItem(result.Item)}, nil
}
