package itemaccess_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/api"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/editorial"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/itemaccess"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/logging"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/testsupport"
)

var baseNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func TestStoreAccessRunsCommands(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	clock := testsupport.NewClock(baseNow)
	access := itemaccess.NewStoreAccess(store, logging.NewNop(), clock.Now)
	ctx := context.Background()

	created, err := access.Create(ctx, api.CreateItemRequest{Title: "Later", ScheduledFor: "2026-05-04T12:00:30Z"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != "scheduled" {
		t.Fatalf("expected scheduled, got %s", created.Status)
	}

	items, err := access.List(ctx, []string{"scheduled"})
	if err != nil || len(items) != 1 {
		t.Fatalf("List: %v (%d items)", err, len(items))
	}
	if _, err := access.List(ctx, []string{"archived"}); err == nil {
		t.Fatal("expected unknown status error")
	}

	clock.Advance(time.Minute)
	report, err := access.Sweep(ctx)
	if err != nil || report.Promoted != 1 {
		t.Fatalf("Sweep: %v %+v", err, report)
	}

	resp, err := access.Toggle(ctx, created.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if resp.Outcome != string(editorial.OutcomeApplied) || resp.Item.Status != "draft" {
		t.Fatalf("unexpected toggle %+v", resp)
	}

	if _, err := access.Reschedule(ctx, created.ID, baseNow); !errors.Is(err, publication.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
	if _, err := access.Get(ctx, "missing"); !errors.Is(err, editorial.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	stats, err := access.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats["draft"] != 1 || stats["published"] != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestOpenWithFallbackUsesStoreWhenDaemonDown(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := api.NewClient("127.0.0.1:1", "")

	opened := false
	session, err := itemaccess.OpenWithFallback(context.Background(), client, itemaccess.StoreOpener(
		func() (*content.Store, error) {
			opened = true
			return content.Open(cfg)
		},
		func(store *content.Store) itemaccess.Access {
			return itemaccess.NewStoreAccess(store, logging.NewNop(), nil)
		},
	))
	if err != nil {
		t.Fatalf("OpenWithFallback: %v", err)
	}
	defer session.Close()

	if !opened || session.Backing != itemaccess.BackingDirect {
		t.Fatalf("expected direct backing, got %s", session.Backing)
	}
}

func TestOpenWithFallbackPrefersDaemon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"running":true,"itemCounts":{"draft":2}}`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.Listener.Addr().String(), "")
	session, err := itemaccess.OpenWithFallback(context.Background(), client, func() (itemaccess.Access, func() error, error) {
		t.Fatal("store must not be opened when the daemon answers")
		return nil, nil, nil
	})
	if err != nil {
		t.Fatalf("OpenWithFallback: %v", err)
	}
	if session.Backing != itemaccess.BackingDaemon {
		t.Fatalf("expected daemon backing, got %s", session.Backing)
	}
	stats, err := session.Access.Stats(context.Background())
	if err != nil || stats["draft"] != 2 {
		t.Fatalf("Stats: %v %+v", err, stats)
	}
}

func TestOpenWithFallbackSurfacesAuthErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.Listener.Addr().String(), "wrong")
	_, err := itemaccess.OpenWithFallback(context.Background(), client, nil)
	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", err)
	}
}

func TestOpenWithFallbackDoesNotBypassSlowDaemon(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	client := api.NewClient(srv.Listener.Addr().String(), "")
	_, err := itemaccess.OpenWithFallback(ctx, client, func() (itemaccess.Access, func() error, error) {
		t.Fatal("store must not be opened while a daemon is listening")
		return nil, nil, nil
	})
	if err == nil || errors.Is(err, api.ErrDaemonUnreachable) {
		t.Fatalf("expected a query error from the slow daemon, got %v", err)
	}
}
