package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/config"
)

const userAgent = "vyomarr/0.1"

// ErrRateLimited reports an event dropped because the send budget is spent.
var ErrRateLimited = errors.New("notification rate limit reached")

// Event identifies a notification type.
type Event string

const (
	EventItemPublished Event = "item_published"
	EventItemScheduled Event = "item_scheduled"
	EventSweepFailed   Event = "sweep_failed"
	EventTest          Event = "test"
)

// Payload carries event fields keyed by name.
type Payload map[string]string

// Service delivers notification events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	svc := &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		publish:  cfg.Notifications.Publish,
	}
	if perMinute := cfg.Notifications.RatePerMinute; perMinute > 0 {
		svc.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return svc
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	publish  bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	// Test sends bypass the budget so operators can always verify delivery.
	if event != EventTest && n.limiter != nil && !n.limiter.Allow() {
		return fmt.Errorf("%w: dropped %s", ErrRateLimited, event)
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	title := strings.TrimSpace(payload["title"])
	if title == "" {
		title = "(untitled)"
	}
	switch event {
	case EventItemPublished:
		if !n.publish {
			return message{}, false
		}
		body := fmt.Sprintf("Published: %s", title)
		if via := strings.TrimSpace(payload["via"]); via != "" {
			body = fmt.Sprintf("%s (%s)", body, via)
		}
		return message{
			title: "vyomarr - Published",
			body:  body,
			tags:  []string{"vyomarr", "publish"},
		}, true
	case EventItemScheduled:
		if !n.publish {
			return message{}, false
		}
		return message{
			title: "vyomarr - Scheduled",
			body:  fmt.Sprintf("Scheduled: %s for %s", title, strings.TrimSpace(payload["scheduledFor"])),
			tags:  []string{"vyomarr", "schedule"},
		}, true
	case EventSweepFailed:
		reason := strings.TrimSpace(payload["error"])
		if reason == "" {
			reason = "unknown"
		}
		return message{
			title:    "vyomarr - Sweep Error",
			body:     fmt.Sprintf("Publication sweep failed: %s", reason),
			tags:     []string{"vyomarr", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "vyomarr - Test",
			body:     "Notification system test",
			tags:     []string{"vyomarr", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
