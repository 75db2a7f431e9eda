package preflight

import (
	"context"
	"strings"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if topic := strings.TrimSpace(cfg.Notifications.NtfyTopic); topic != "" {
		ntfy := CheckNtfy(ctx, topic)
		ntfy.Optional = true
		results = append(results, ntfy)
	}
	return results
}

// FirstFailure returns the first failed required check, if any.
func FirstFailure(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return r, true
		}
	}
	return Result{}, false
}
