package itemaccess

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/api"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
)

// Backing names what a Session talks to.
type Backing string

const (
	BackingDaemon Backing = "daemon"
	BackingDirect Backing = "direct"
)

// Session represents an access handle and its cleanup function.
type Session struct {
	Access  Access
	Backing Backing
	close   func() error
}

// Close releases resources associated with the session.
func (s Session) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenWithFallback uses the daemon API when it answers a status probe and
// opens the store directly only when no daemon is listening. Direct writes stay safe alongside a
// running daemon because every state change is a conditional update.
func OpenWithFallback(
	ctx context.Context,
	client *api.Client,
	openStore func() (Access, func() error, error),
) (Session, error) {
	if client != nil {
		_, err := client.Status(ctx)
		switch {
		case err == nil:
			return Session{Access: NewAPIAccess(client), Backing: BackingDaemon}, nil
		case !errors.Is(err, api.ErrDaemonUnreachable):
			return Session{}, fmt.Errorf("query daemon: %w", err)
		}
	}

	if openStore == nil {
		return Session{}, fmt.Errorf("open content store: no store opener configured")
	}
	access, closeFn, err := openStore()
	if err != nil {
		return Session{}, fmt.Errorf("open content store: %w", err)
	}
	return Session{Access: access, Backing: BackingDirect, close: closeFn}, nil
}

// StoreOpener adapts content.Open style constructors for OpenWithFallback.
func StoreOpener(open func() (*content.Store, error), wrap func(*content.Store) Access) func() (Access, func() error, error) {
	return func() (Access, func() error, error) {
		store, err := open()
		if err != nil {
			return nil, nil, err
		}
		return wrap(store), store.Close, nil
	}
}
