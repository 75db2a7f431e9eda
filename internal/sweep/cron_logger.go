package sweep

import (
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/logging"
)

// cronLogger adapts slog to cron.Logger and counts skipped runs.
type cronLogger struct {
	log     *slog.Logger
	skipped *atomic.Int64
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	if msg == "skip" && l.skipped != nil {
		l.skipped.Add(1)
		l.log.Debug("sweep still running; tick skipped", logging.String(logging.FieldEventType, "sweep_skipped"))
		return
	}
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	args := append([]any{logging.Error(err), logging.String(logging.FieldEventType, "sweep_cron_error")}, keysAndValues...)
	l.log.Error("cron: "+msg, args...)
}
