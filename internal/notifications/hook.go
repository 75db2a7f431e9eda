package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/logging"
)

const hookTimeout = 15 * time.Second

// PublishedHook returns a callback that announces published items without
// blocking the caller. via names what published the item (sweep, editor).
func PublishedHook(svc Service, logger *slog.Logger, via string) func(context.Context, content.Item) {
	return hook(svc, logger, EventItemPublished, func(item content.Item) Payload {
		return Payload{"title": item.Title, "id": item.ID, "via": via}
	})
}

// ScheduledHook returns a callback that announces newly scheduled items.
func ScheduledHook(svc Service, logger *slog.Logger) func(context.Context, content.Item) {
	return hook(svc, logger, EventItemScheduled, func(item content.Item) Payload {
		payload := Payload{"title": item.Title, "id": item.ID}
		if item.ScheduledFor != nil {
			payload["scheduledFor"] = item.ScheduledFor.UTC().Format(time.RFC3339)
		}
		return payload
	})
}

func hook(svc Service, logger *slog.Logger, event Event, build func(content.Item) Payload) func(context.Context, content.Item) {
	logger = logging.NewComponentLogger(logger, "notifications")
	return func(ctx context.Context, item content.Item) {
		dispatch(ctx, svc, logger.With(logging.String(logging.FieldItemID, item.ID)), event, build(item))
	}
}

// PublishAsync sends one event in the background so the caller never waits
// on the ntfy endpoint. Failures are logged, not returned.
func PublishAsync(ctx context.Context, svc Service, logger *slog.Logger, event Event, payload Payload) {
	dispatch(ctx, svc, logging.NewComponentLogger(logger, "notifications"), event, payload)
}

func dispatch(ctx context.Context, svc Service, logger *slog.Logger, event Event, payload Payload) {
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), hookTimeout)
		defer cancel()
		err := svc.Publish(sendCtx, event, payload)
		switch {
		case err == nil:
		case errors.Is(err, ErrRateLimited):
			logger.Debug("notification dropped", logging.String("event", string(event)), logging.Error(err))
		default:
			logging.WarnWithContext(logger, "notification failed", "notification_failed",
				logging.String("event", string(event)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
				logging.String(logging.FieldImpact, "the event happened but nobody was notified"),
			)
		}
	}()
}
