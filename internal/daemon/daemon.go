package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/config"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/editorial"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/logging"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/notifications"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/preflight"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/sweep"
)

// ErrAlreadyRunning is returned when Start is called on a running daemon.
var ErrAlreadyRunning = errors.New("daemon already running")

// ErrLocked is returned when another daemon holds the instance lock.
var ErrLocked = errors.New("another vyomarr daemon instance is already running")

// Option customizes a Daemon.
type Option func(*Daemon)

// WithClock overrides the clock used by commands and sweeps.
func WithClock(clock func() time.Time) Option {
	return func(d *Daemon) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// WithNotifier overrides the notification service built from config.
func WithNotifier(svc notifications.Service) Option {
	return func(d *Daemon) {
		if svc != nil {
			d.notifier = svc
		}
	}
}

// Daemon owns the sweep scheduler, the API server, and the instance lock.
type Daemon struct {
	cfg       *config.Config
	base      *slog.Logger
	logger    *slog.Logger
	store     *content.Store
	clock     func() time.Time
	notifier  notifications.Service
	editorial *editorial.Service
	sweeper   *sweep.Scheduler

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	api     *apiServer
	cancel  context.CancelFunc
	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	DatabasePath  string
	LockFilePath  string
	ItemCounts    map[publication.Status]int
	Scheduler     sweep.Snapshot
	NextScheduled *time.Time
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *content.Store, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	d := &Daemon{
		cfg:      cfg,
		base:     logger,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		clock:    time.Now,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.notifier == nil {
		d.notifier = notifications.NewService(cfg)
	}

	d.editorial = editorial.NewService(store, editorial.Options{
		Clock:       d.clock,
		Logger:      logger,
		OnPublished: notifications.PublishedHook(d.notifier, logger, "editor"),
		OnScheduled: notifications.ScheduledHook(d.notifier, logger),
	})
	d.sweeper = sweep.New(store, sweep.Options{
		Interval:    cfg.SweepInterval(),
		Clock:       d.clock,
		Logger:      logger,
		OnPublished: notifications.PublishedHook(d.notifier, logger, "sweep"),
		OnReport:    d.reportSweepFailure,
	})
	return d, nil
}

// Start runs preflight checks, acquires the instance lock, and launches the
// sweep scheduler and API server.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return ErrAlreadyRunning
	}

	if failure, failed := preflight.FirstFailure(preflight.RunAll(ctx, d.cfg)); failed {
		return fmt.Errorf("preflight %s: %s", strings.ToLower(failure.Name), failure.Detail)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}

	logging.PruneLogs(d.logger, d.cfg.Paths.LogDir, d.cfg.Logging.RetentionDays, time.Now())

	runCtx, cancel := context.WithCancel(ctx)
	if d.cfg.Scheduler.Enabled {
		if err := d.sweeper.Start(runCtx); err != nil {
			cancel()
			_ = d.lock.Unlock()
			return fmt.Errorf("start sweep scheduler: %w", err)
		}
	} else {
		d.logger.Info("sweep scheduler disabled by configuration",
			logging.String(logging.FieldEventType, "sweep_disabled"),
		)
	}

	srv := newAPIServer(d.cfg, d, d.base)
	if err := srv.start(runCtx); err != nil {
		cancel()
		d.stopSweeper()
		_ = d.lock.Unlock()
		return err
	}

	d.api = srv
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("vyomarr daemon started",
		logging.String("lock", d.lockPath),
		logging.String("database", d.store.Path()),
		logging.String(logging.FieldEventType, "daemon_started"),
	)
	return nil
}

// Stop halts the API server and scheduler and releases the instance lock.
// An in-flight sweep gets up to scheduler.stop_timeout_seconds to finish.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}

	d.api.stop()
	d.api = nil
	d.stopSweeper()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no daemon is running"),
		)
	}
	d.running.Store(false)
	d.logger.Info("vyomarr daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

func (d *Daemon) stopSweeper() {
	stopCtx, cancel := context.WithTimeout(context.Background(), d.cfg.StopTimeout())
	defer cancel()
	if err := d.sweeper.Stop(stopCtx); err != nil {
		logging.WarnWithContext(d.logger, "sweep did not finish before shutdown", "sweep_stop_timeout",
			logging.Error(err),
			logging.String(logging.FieldImpact, "items due in the interrupted tick are promoted on next start"),
		)
	}
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Running reports whether the daemon has been started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Editorial returns the command service bound to the daemon's store.
func (d *Daemon) Editorial() *editorial.Service {
	return d.editorial
}

// RunSweep runs one sweep tick immediately, whether or not the scheduler is enabled.
func (d *Daemon) RunSweep(ctx context.Context) sweep.Report {
	return d.sweeper.Tick(ctx)
}

// APIAddr returns the address the API server is listening on, or "" when it is not serving.
func (d *Daemon) APIAddr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		Scheduler:    d.sweeper.Snapshot(),
	}
	counts, err := d.store.Stats(ctx)
	if err != nil {
		return status, fmt.Errorf("item counts: %w", err)
	}
	status.ItemCounts = counts
	next, err := d.store.NextScheduled(ctx)
	if err != nil {
		return status, fmt.Errorf("next scheduled: %w", err)
	}
	status.NextScheduled = next
	return status, nil
}

// reportSweepFailure alerts on ticks that failed outright or left due items
// unpublished. It runs inside the tick, so the send happens in the background.
func (d *Daemon) reportSweepFailure(ctx context.Context, report sweep.Report) {
	var reason string
	switch {
	case report.Skipped || errors.Is(report.Err, context.Canceled):
		return
	case report.Err != nil:
		reason = report.Err.Error()
	case report.Failed > 0:
		reason = fmt.Sprintf("%d of %d due items could not be published", report.Failed, report.Due)
	default:
		return
	}
	notifications.PublishAsync(ctx, d.notifier, d.base, notifications.EventSweepFailed, notifications.Payload{"error": reason})
}
