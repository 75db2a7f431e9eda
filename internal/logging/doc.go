// Package logging assembles structured slog loggers and formatting helpers used
// across vyomarr services.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so sweep and editorial code can tag
// log lines with content item IDs and request correlation IDs. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
