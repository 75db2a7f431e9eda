package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrDaemonUnreachable reports that no daemon answered at the configured address.
var ErrDaemonUnreachable = errors.New("daemon unreachable")

// StatusError is a non-2xx API response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("daemon returned %d: %s", e.Code, e.Message)
}

// Client talks to the daemon HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for the daemon listening on bind (host:port).
func NewClient(bind, token string) *Client {
	base := strings.TrimSpace(bind)
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Status fetches daemon status.
func (c *Client) Status(ctx context.Context) (*DaemonStatus, error) {
	var out DaemonStatus
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListItems lists items, optionally filtered by status.
func (c *Client) ListItems(ctx context.Context, statuses []string) ([]ContentItem, error) {
	path := "/api/items"
	if len(statuses) > 0 {
		q := url.Values{}
		for _, s := range statuses {
			q.Add("status", s)
		}
		path += "?" + q.Encode()
	}
	var out ItemListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetItem fetches one item.
func (c *Client) GetItem(ctx context.Context, id string) (*ContentItem, error) {
	var out ItemResponse
	if err := c.do(ctx, http.MethodGet, "/api/items/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

// CreateItem creates an item.
func (c *Client) CreateItem(ctx context.Context, req CreateItemRequest) (*ContentItem, error) {
	var out ItemResponse
	if err := c.do(ctx, http.MethodPost, "/api/items", req, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

// PublishNow publishes an item immediately.
func (c *Client) PublishNow(ctx context.Context, id string) (*CommandResponse, error) {
	return c.command(ctx, id, "publish", nil)
}

// Reschedule schedules an item for at.
func (c *Client) Reschedule(ctx context.Context, id string, at time.Time) (*CommandResponse, error) {
	return c.command(ctx, id, "reschedule", RescheduleRequest{ScheduledFor: at.UTC().Format(time.RFC3339Nano)})
}

// Toggle flips an item between published and draft.
func (c *Client) Toggle(ctx context.Context, id string) (*CommandResponse, error) {
	return c.command(ctx, id, "toggle", nil)
}

// Sweep asks the daemon to run a sweep tick now.
func (c *Client) Sweep(ctx context.Context) (*SweepReport, error) {
	var out SweepReport
	if err := c.do(ctx, http.MethodPost, "/api/sweep", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) command(ctx context.Context, id, action string, body any) (*CommandResponse, error) {
	var out CommandResponse
	if err := c.do(ctx, http.MethodPost, "/api/items/"+url.PathEscape(id)+"/"+action, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isDialError(err) {
			return fmt.Errorf("%w: %w", ErrDaemonUnreachable, err)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(data))
		}
		return &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// isDialError reports failures to reach the daemon at all. A timeout on an
// established connection means a daemon is there but slow.
func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
