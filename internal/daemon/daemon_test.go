package daemon_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/api"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/daemon"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/editorial"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/logging"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/notifications"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/testsupport"
)

var baseNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

type sentEvent struct {
	event   notifications.Event
	payload notifications.Payload
}

type recordingNotifier struct {
	events chan sentEvent
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(chan sentEvent, 16)}
}

func (n *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	n.events <- sentEvent{event: event, payload: payload}
	return nil
}

func (n *recordingNotifier) next(t *testing.T) sentEvent {
	t.Helper()
	select {
	case ev := <-n.events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for notification")
		return sentEvent{}
	}
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	clock := testsupport.NewClock(baseNow)

	d, err := daemon.New(cfg, store, logging.NewNop(), daemon.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	status, err := d.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || !status.Scheduler.Running {
		t.Fatalf("expected daemon and scheduler running, got %+v", status)
	}
	if d.APIAddr() == "" {
		t.Fatal("expected API server address")
	}

	if err := d.Start(ctx); !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	d.Stop()
	status, err = d.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Running || status.Scheduler.Running {
		t.Fatal("expected daemon to be stopped")
	}
	if d.APIAddr() != "" {
		t.Fatal("expected API server to be stopped")
	}
}

func TestDaemonLockPreventsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSchedulerDisabled())
	store := testsupport.MustOpenStore(t, cfg)

	first, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	t.Cleanup(first.Stop)

	second, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(context.Background()); !errors.Is(err, daemon.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	first.Stop()
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("second Start after release: %v", err)
	}
	second.Stop()
}

func TestRunSweepPromotesAndNotifies(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSchedulerDisabled())
	store := testsupport.MustOpenStore(t, cfg)
	clock := testsupport.NewClock(baseNow)
	notifier := newRecordingNotifier()

	d, err := daemon.New(cfg, store, logging.NewNop(), daemon.WithClock(clock.Now), daemon.WithNotifier(notifier))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	at := baseNow.Add(10 * time.Second)
	item, err := d.Editorial().Create(context.Background(), editorial.CreateRequest{Title: "Launch", RequestedTime: &at})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ev := notifier.next(t); ev.event != notifications.EventItemScheduled || ev.payload["id"] != item.ID {
		t.Fatalf("expected scheduled notification, got %+v", ev)
	}

	if report := d.RunSweep(context.Background()); report.Promoted != 0 {
		t.Fatalf("expected nothing due yet, got %+v", report)
	}

	clock.Advance(11 * time.Second)
	report := d.RunSweep(context.Background())
	if report.Promoted != 1 || report.Err != nil {
		t.Fatalf("expected one promotion, got %+v", report)
	}
	ev := notifier.next(t)
	if ev.event != notifications.EventItemPublished || ev.payload["via"] != "sweep" {
		t.Fatalf("expected sweep publish notification, got %+v", ev)
	}
	if got := testsupport.MustGetItem(t, store, item.ID); got.Status != publication.StatusPublished {
		t.Fatalf("expected published, got %s", got.Status)
	}
}

func TestRunSweepFailureSendsAlert(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSchedulerDisabled())
	store := testsupport.MustOpenStore(t, cfg)
	notifier := newRecordingNotifier()

	d, err := daemon.New(cfg, store, logging.NewNop(), daemon.WithNotifier(notifier))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	_ = store.Close()

	report := d.RunSweep(context.Background())
	if report.Err == nil {
		t.Fatal("expected sweep error on closed store")
	}
	if ev := notifier.next(t); ev.event != notifications.EventSweepFailed || ev.payload["error"] == "" {
		t.Fatalf("expected sweep_failed notification, got %+v", ev)
	}
}

type blockingNotifier struct {
	entered chan notifications.Event
	release chan struct{}
}

func (n *blockingNotifier) Publish(ctx context.Context, event notifications.Event, _ notifications.Payload) error {
	n.entered <- event
	select {
	case <-n.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestSlowSweepAlertDoesNotHoldTheSweep(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSchedulerDisabled())
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &blockingNotifier{entered: make(chan notifications.Event, 4), release: make(chan struct{})}
	defer close(notifier.release)

	d, err := daemon.New(cfg, store, logging.NewNop(), daemon.WithNotifier(notifier))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	_ = store.Close()

	if report := d.RunSweep(context.Background()); report.Err == nil {
		t.Fatal("expected sweep error on closed store")
	}
	select {
	case ev := <-notifier.entered:
		if ev != notifications.EventSweepFailed {
			t.Fatalf("expected sweep_failed, got %s", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the alert")
	}

	if again := d.RunSweep(context.Background()); again.Skipped {
		t.Fatal("sweep skipped while the previous alert was still sending")
	}
}

func TestDaemonServesAPIClient(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSchedulerDisabled(), testsupport.WithAPIToken("secret"))
	store := testsupport.MustOpenStore(t, cfg)
	clock := testsupport.NewClock(baseNow)

	d, err := daemon.New(cfg, store, logging.NewNop(), daemon.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(d.Stop)

	ctx := context.Background()
	client := api.NewClient(d.APIAddr(), "secret")

	created, err := client.CreateItem(ctx, api.CreateItemRequest{Title: "Draft me"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if created.Status != "published" {
		t.Fatalf("expected immediate publish, got %s", created.Status)
	}

	resp, err := client.Toggle(ctx, created.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if resp.Outcome != "applied" || resp.Item.Status != "draft" || resp.Item.PublishedAt != "" {
		t.Fatalf("unexpected toggle response %+v", resp)
	}

	resp, err = client.Reschedule(ctx, created.ID, baseNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if resp.Item.Status != "scheduled" {
		t.Fatalf("expected scheduled, got %s", resp.Item.Status)
	}

	status, err := client.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || status.ItemCounts["scheduled"] != 1 || status.Scheduler.NextScheduled == "" {
		t.Fatalf("unexpected status %+v", status)
	}

	unauthorized := api.NewClient(d.APIAddr(), "wrong")
	var statusErr *api.StatusError
	if _, err := unauthorized.Status(ctx); !errors.As(err, &statusErr) || statusErr.Code != 401 {
		t.Fatalf("expected 401, got %v", err)
	}
}
