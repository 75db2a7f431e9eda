package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/config"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
)

// MustOpenStore opens the content store for cfg and closes it when the test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *content.Store {
	t.Helper()

	store, err := content.Open(cfg)
	if err != nil {
		t.Fatalf("content.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustCreateItem inserts an item whose initial state is decided from requested and now.
func MustCreateItem(t testing.TB, store *content.Store, title string, requested *time.Time, now time.Time) *content.Item {
	t.Helper()

	item, err := store.Create(context.Background(), content.NewItem{Title: title}, publication.DecideOnCreate(requested, now), now)
	if err != nil {
		t.Fatalf("Create %q: %v", title, err)
	}
	return item
}

// MustGetItem fetches an item that the test expects to exist.
func MustGetItem(t testing.TB, store *content.Store, id string) *content.Item {
	t.Helper()

	item, err := store.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID %s: %v", id, err)
	}
	if item == nil {
		t.Fatalf("item %s not found", id)
	}
	return item
}
