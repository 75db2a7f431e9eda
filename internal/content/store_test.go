package content_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/testsupport"
)

var baseNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	version, err := store.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != "001_init" {
		t.Fatalf("unexpected schema version %q", version)
	}

	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.TableExists || !health.IntegrityCheck || len(health.MissingColumns) > 0 {
		t.Fatalf("unexpected health: %+v", health)
	}
}

func TestReopenKeepsItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.MustCreateItem(t, store, "Persistent", nil, baseNow)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	fetched := testsupport.MustGetItem(t, reopened, item.ID)
	if fetched.Title != "Persistent" || fetched.Status != publication.StatusPublished {
		t.Fatalf("unexpected item after reopen: %+v", fetched)
	}
}

func TestCreateRoundTripsState(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	scheduledFor := baseNow.Add(90 * time.Minute).Add(123 * time.Nanosecond)
	scheduled := testsupport.MustCreateItem(t, store, "Later", &scheduledFor, baseNow)
	if scheduled.ID == "" || scheduled.Version != 1 {
		t.Fatalf("unexpected created item: %+v", scheduled)
	}

	fetched := testsupport.MustGetItem(t, store, scheduled.ID)
	if fetched.Status != publication.StatusScheduled || fetched.ScheduledFor == nil || !fetched.ScheduledFor.Equal(scheduledFor) {
		t.Fatalf("unexpected scheduled item: %+v", fetched)
	}
	if fetched.PublishedAt != nil || fetched.FirstPublishedAt != nil {
		t.Fatalf("expected no publication timestamps, got %+v", fetched)
	}
	if fetched.Kind != content.KindPost {
		t.Fatalf("expected default kind post, got %q", fetched.Kind)
	}

	now := testsupport.MustCreateItem(t, store, "Now", nil, baseNow)
	fetched = testsupport.MustGetItem(t, store, now.ID)
	if fetched.PublishedAt == nil || !fetched.PublishedAt.Equal(baseNow) {
		t.Fatalf("expected published_at %s, got %v", baseNow, fetched.PublishedAt)
	}
	if fetched.FirstPublishedAt == nil || !fetched.FirstPublishedAt.Equal(baseNow) {
		t.Fatalf("expected first_published_at %s, got %v", baseNow, fetched.FirstPublishedAt)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.Create(ctx, content.NewItem{Title: "  "}, publication.DecideOnCreate(nil, baseNow), baseNow); !errors.Is(err, content.ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem for empty title, got %v", err)
	}
	if _, err := store.Create(ctx, content.NewItem{Title: "x", Kind: "video"}, publication.DecideOnCreate(nil, baseNow), baseNow); !errors.Is(err, content.ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem for unknown kind, got %v", err)
	}
	bad := publication.Transition{To: publication.StatusScheduled}
	if _, err := store.Create(ctx, content.NewItem{Title: "x"}, bad, baseNow); !errors.Is(err, publication.ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	item, err := store.GetByID(context.Background(), "missing")
	if err != nil || item != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", item, err)
	}
}

func TestFindDueOrdersBySchedule(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	// Sub-second schedules must still sort chronologically.
	later := testsupport.MustCreateItem(t, store, "later", ptr(baseNow.Add(2*time.Second)), baseNow)
	earlier := testsupport.MustCreateItem(t, store, "earlier", ptr(baseNow.Add(1500*time.Millisecond)), baseNow)
	testsupport.MustCreateItem(t, store, "future", ptr(baseNow.Add(time.Hour)), baseNow)
	testsupport.MustCreateItem(t, store, "published", nil, baseNow)

	due, err := store.FindDue(context.Background(), baseNow.Add(2*time.Second))
	if err != nil {
		t.Fatalf("FindDue failed: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due items, got %d", len(due))
	}
	if due[0].ID != earlier.ID || due[1].ID != later.ID {
		t.Fatalf("unexpected order: %s, %s", due[0].Title, due[1].Title)
	}

	next, err := store.NextScheduled(context.Background())
	if err != nil {
		t.Fatalf("NextScheduled failed: %v", err)
	}
	if next == nil || !next.Equal(baseNow.Add(1500*time.Millisecond)) {
		t.Fatalf("unexpected next schedule %v", next)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.MustCreateItem(t, store, "a", nil, baseNow)
	testsupport.MustCreateItem(t, store, "b", ptr(baseNow.Add(time.Hour)), baseNow)
	testsupport.MustCreateItem(t, store, "c", ptr(baseNow.Add(2*time.Hour)), baseNow)

	ctx := context.Background()
	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 items, got %d", len(all))
	}
	scheduled, err := store.List(ctx, publication.StatusScheduled)
	if err != nil {
		t.Fatalf("List scheduled failed: %v", err)
	}
	if len(scheduled) != 2 {
		t.Fatalf("expected 2 scheduled items, got %d", len(scheduled))
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[publication.StatusPublished] != 1 || stats[publication.StatusScheduled] != 2 {
		t.Fatalf("unexpected stats %v", stats)
	}
}

func TestApplyTransitionOutcomes(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	item := testsupport.MustCreateItem(t, store, "scheduled", ptr(baseNow.Add(time.Minute)), baseNow)

	at := baseNow.Add(2 * time.Minute)
	tr, ok := publication.DecideSweepPromotion(item.State(), at)
	if !ok {
		t.Fatal("expected item to be due")
	}

	outcome, err := store.ApplyTransition(ctx, item.ID, item.Expect(), tr, at)
	if err != nil || outcome != content.OutcomeApplied {
		t.Fatalf("first apply = %s, %v", outcome, err)
	}
	fetched := testsupport.MustGetItem(t, store, item.ID)
	if fetched.Version != 2 || fetched.Status != publication.StatusPublished || fetched.ScheduledFor != nil {
		t.Fatalf("unexpected item after apply: %+v", fetched)
	}

	outcome, err = store.ApplyTransition(ctx, item.ID, item.Expect(), tr, at)
	if err != nil || outcome != content.OutcomeConflict {
		t.Fatalf("stale apply = %s, %v", outcome, err)
	}

	outcome, err = store.ApplyTransition(ctx, "missing", item.Expect(), tr, at)
	if err != nil || outcome != content.OutcomeNotFound {
		t.Fatalf("missing apply = %s, %v", outcome, err)
	}

	if _, err := store.ApplyTransition(ctx, item.ID, fetched.Expect(), publication.Transition{To: publication.StatusPublished}, at); !errors.Is(err, publication.ErrInvariant) {
		t.Fatalf("expected ErrInvariant for invalid transition, got %v", err)
	}
}

func TestFirstPublishedAtIsSetOnce(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	item := testsupport.MustCreateItem(t, store, "toggle", nil, baseNow)

	current := item
	for i := 1; i <= 4; i++ {
		at := baseNow.Add(time.Duration(i) * time.Minute)
		tr := publication.DecideToggle(current.State(), at)
		outcome, err := store.ApplyTransition(ctx, current.ID, current.Expect(), tr, at)
		if err != nil || outcome != content.OutcomeApplied {
			t.Fatalf("toggle %d = %s, %v", i, outcome, err)
		}
		current = testsupport.MustGetItem(t, store, item.ID)
	}

	lastToggle := baseNow.Add(4 * time.Minute)
	if current.Status != publication.StatusPublished || current.PublishedAt == nil || !current.PublishedAt.Equal(lastToggle) {
		t.Fatalf("expected republished item after even toggles, got %+v", current)
	}
	if current.FirstPublishedAt == nil || !current.FirstPublishedAt.Equal(baseNow) {
		t.Fatalf("first_published_at changed: %v", current.FirstPublishedAt)
	}
}

func TestConcurrentApplyHasSingleWinner(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	item := testsupport.MustCreateItem(t, store, "race", ptr(baseNow.Add(time.Second)), baseNow)

	const writers = 8
	outcomes := make([]content.Outcome, writers)
	errs := make([]error, writers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			at := baseNow.Add(time.Duration(i+2) * time.Second)
			outcomes[i], errs[i] = store.ApplyTransition(ctx, item.ID, item.Expect(), publication.DecidePublishNow(item.State(), at), at)
		}(i)
	}
	close(start)
	wg.Wait()

	applied := 0
	for i := range outcomes {
		if errs[i] != nil {
			t.Fatalf("writer %d error: %v", i, errs[i])
		}
		if outcomes[i] == content.OutcomeApplied {
			applied++
		}
	}
	if applied != 1 {
		t.Fatalf("expected exactly one applied write, got %d", applied)
	}
	fetched := testsupport.MustGetItem(t, store, item.ID)
	if fetched.Version != 2 {
		t.Fatalf("expected version 2, got %d", fetched.Version)
	}
}

func TestRemove(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	item := testsupport.MustCreateItem(t, store, "gone", nil, baseNow)

	removed, err := store.Remove(context.Background(), item.ID)
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	removed, err = store.Remove(context.Background(), item.ID)
	if err != nil || removed {
		t.Fatalf("second Remove = %v, %v", removed, err)
	}
}

func TestClosedStoreReportsUnavailable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := content.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = store.Close()

	if _, err := store.FindDue(context.Background(), baseNow); !errors.Is(err, content.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
