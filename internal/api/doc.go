// Package api defines wire-format types, converters, and the HTTP client for
// the daemon API. It translates content items and sweep state into
// transport-friendly DTOs that the CLI and other consumers can render without
// coupling to internal types.
//
// # Key Types
//
// ContentItem: transport representation of a content item with its
// publication timestamps and version.
//
// CommandResponse: result of an editorial command, including whether it was
// applied, unchanged, or superseded by a concurrent write.
//
// DaemonStatus: daemon running state, item counts per status, and the sweep
// scheduler snapshot.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Statuses are exposed as lowercase strings.
// Timestamps use RFC3339 with milliseconds in UTC; empty timestamps are
// omitted.
package api
