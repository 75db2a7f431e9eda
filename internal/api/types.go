package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ContentItem describes a content item in a transport-friendly format.
type ContentItem struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Kind             string `json:"kind"`
	Status           string `json:"status"`
	ScheduledFor     string `json:"scheduledFor,omitempty"`
	PublishedAt      string `json:"publishedAt,omitempty"`
	FirstPublishedAt string `json:"firstPublishedAt,omitempty"`
	Version          int64  `json:"version"`
	CreatedAt        string `json:"createdAt,omitempty"`
	UpdatedAt        string `json:"updatedAt,omitempty"`
}

// ItemListResponse wraps a list of items.
type ItemListResponse struct {
	Items []ContentItem `json:"items"`
}

// ItemResponse wraps a single item.
type ItemResponse struct {
	Item ContentItem `json:"item"`
}

// CreateItemRequest is the body of POST /api/items. An empty or past
// scheduledFor publishes immediately.
type CreateItemRequest struct {
	Title        string `json:"title"`
	Kind         string `json:"kind,omitempty"`
	ScheduledFor string `json:"scheduledFor,omitempty"`
}

// RescheduleRequest is the body of POST /api/items/{id}/reschedule.
type RescheduleRequest struct {
	ScheduledFor string `json:"scheduledFor"`
}

// CommandResponse reports how an editorial command resolved.
type CommandResponse struct {
	Outcome string      `json:"outcome"`
	Item    ContentItem `json:"item"`
}

// SweepReport summarizes one sweep tick.
type SweepReport struct {
	Started   string `json:"started,omitempty"`
	Finished  string `json:"finished,omitempty"`
	Due       int    `json:"due"`
	Promoted  int    `json:"promoted"`
	Conflicts int    `json:"conflicts"`
	Vanished  int    `json:"vanished"`
	Failed    int    `json:"failed"`
	Skipped   bool   `json:"skipped,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SchedulerStatus mirrors the sweep scheduler snapshot.
type SchedulerStatus struct {
	Running         bool         `json:"running"`
	IntervalSeconds int64        `json:"intervalSeconds"`
	LastTick        string       `json:"lastTick,omitempty"`
	LastReport      *SweepReport `json:"lastReport,omitempty"`
	Skipped         int64        `json:"skipped"`
	NextScheduled   string       `json:"nextScheduled,omitempty"`
}

// DaemonStatus captures daemon runtime information.
type DaemonStatus struct {
	Running      bool            `json:"running"`
	PID          int             `json:"pid"`
	DatabasePath string          `json:"databasePath"`
	LockFilePath string          `json:"lockFilePath"`
	ItemCounts   map[string]int  `json:"itemCounts"`
	Scheduler    SchedulerStatus `json:"scheduler"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
