package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/logging"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/publication"
)

// ErrAlreadyRunning is returned by Start on a running scheduler.
var ErrAlreadyRunning = errors.New("sweep scheduler already running")

// DefaultInterval is used when Options.Interval is not positive.
const DefaultInterval = time.Minute

// Store is the subset of the content store a sweep needs.
type Store interface {
	FindDue(ctx context.Context, now time.Time) ([]*content.Item, error)
	ApplyTransition(ctx context.Context, id string, expect content.Expect, tr publication.Transition, now time.Time) (content.Outcome, error)
}

// Options configures a Scheduler.
type Options struct {
	Interval time.Duration
	Clock    func() time.Time
	Logger   *slog.Logger
	// OnPublished runs after each successful promotion with the item as written.
	OnPublished func(ctx context.Context, item content.Item)
	// OnReport runs after every tick that was not skipped.
	OnReport func(ctx context.Context, report Report)
}

// Snapshot describes scheduler state for status reporting.
type Snapshot struct {
	Running    bool
	Interval   time.Duration
	LastTick   time.Time
	LastReport *Report
	Skipped    int64
}

// Scheduler owns the cron runner that drives sweep ticks.
type Scheduler struct {
	store       Store
	interval    time.Duration
	clock       func() time.Time
	logger      *slog.Logger
	onPublished func(ctx context.Context, item content.Item)
	onReport    func(ctx context.Context, report Report)

	tickMu  sync.Mutex
	skipped atomic.Int64

	mu         sync.Mutex
	cron       *cron.Cron
	cancel     context.CancelFunc
	inflight   sync.WaitGroup
	lastTick   time.Time
	lastReport *Report
}

// New constructs a stopped scheduler.
func New(store Store, opts Options) *Scheduler {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{
		store:       store,
		interval:    interval,
		clock:       clock,
		logger:      logging.NewComponentLogger(opts.Logger, "sweep"),
		onPublished: opts.OnPublished,
		onReport:    opts.OnReport,
	}
}

// Start runs one tick immediately and then one every interval until Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	l := cronLogger{log: s.logger, skipped: &s.skipped}
	job := cron.NewChain(cron.Recover(l), cron.SkipIfStillRunning(l)).Then(cron.FuncJob(func() {
		s.Tick(runCtx)
	}))

	c := cron.New(cron.WithLocation(time.UTC), cron.WithLogger(l))
	if _, err := c.AddJob(fmt.Sprintf("@every %s", s.interval), job); err != nil {
		cancel()
		return fmt.Errorf("register sweep schedule: %w", err)
	}

	s.cron = c
	s.cancel = cancel
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		job.Run()
	}()
	c.Start()

	s.logger.Info("sweep scheduler started",
		logging.Duration("interval", s.interval),
		logging.String(logging.FieldEventType, "sweep_started"),
	)
	return nil
}

// Stop halts future ticks and waits for an in-flight tick or ctx expiry.
// Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	cancel := s.cancel
	s.cron = nil
	s.cancel = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}

	cronDone := c.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.inflight.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	cancel()
	s.logger.Info("sweep scheduler stopped", logging.String(logging.FieldEventType, "sweep_stopped"))
	return err
}

// Running reports whether Start has been called without a matching Stop.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}

// Snapshot returns a copy of the scheduler's state.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Running:  s.cron != nil,
		Interval: s.interval,
		LastTick: s.lastTick,
		Skipped:  s.skipped.Load(),
	}
	if s.lastReport != nil {
		report := *s.lastReport
		snap.LastReport = &report
	}
	return snap
}

func (s *Scheduler) record(report Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTick = report.Started
	s.lastReport = &report
}
