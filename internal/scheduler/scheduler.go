// Package scheduler runs detection cycles on a fixed interval and exposes
// their outcome as health and Prometheus metrics.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/abdulachik/releasebot/internal/detector"
	"github.com/abdulachik/releasebot/internal/logging"
)

const (
	defaultInterval     = 30 * time.Second
	defaultCycleTimeout = 5 * time.Minute
)

// Health component names.
const (
	ComponentCycle     = "cycle"
	ComponentAnnouncer = "announcer"
)

// Cycler runs one detection cycle.
type Cycler interface {
	RunCycle(ctx context.Context) detector.CycleResult
}

// Scheduler triggers detection cycles.
type Scheduler struct {
	cycler       Cycler
	interval     time.Duration
	cycleTimeout time.Duration
	health       *Health
	metrics      *Metrics
	logger       *slog.Logger
}

// Config holds scheduler configuration.
type Config struct {
	Detector     Cycler
	Interval     time.Duration
	CycleTimeout time.Duration
	Health       *Health
	Metrics      *Metrics // optional
	Logger       *slog.Logger
}

// New creates a new scheduler.
func New(cfg Config) *Scheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	timeout := cfg.CycleTimeout
	if timeout <= 0 {
		timeout = defaultCycleTimeout
	}
	health := cfg.Health
	if health == nil {
		health = NewHealth()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cycler:       cfg.Detector,
		interval:     interval,
		cycleTimeout: timeout,
		health:       health,
		metrics:      cfg.Metrics,
		logger:       logger,
	}
}

// Run runs one cycle immediately, then one every interval until ctx is
// cancelled. A tick that fires while a cycle is still running is dropped.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval,
		"cycle_timeout", s.cycleTimeout,
	)

	cl := cronLogger{logger: s.logger}
	c := cron.New(cron.WithLogger(cl))

	// The startup cycle and the ticks share one wrapped job, so both are
	// recovered and neither overlaps the other.
	job := cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).
		Then(cron.FuncJob(func() { s.RunOnce(ctx) }))
	c.Schedule(cron.Every(s.interval), job)

	job.Run()

	c.Start()
	s.health.SetReady(true)

	<-ctx.Done()
	s.health.SetReady(false)
	s.logger.Info("scheduler shutting down")

	// Wait for a running cycle to observe the cancellation.
	<-c.Stop().Done()
	return ctx.Err()
}

// RunOnce runs a single cycle bounded by the cycle timeout and records its
// outcome.
func (s *Scheduler) RunOnce(ctx context.Context) detector.CycleResult {
	if ctx.Err() != nil {
		return detector.CycleResult{Skipped: true, Err: ctx.Err()}
	}

	cycleCtx, cancel := context.WithTimeout(ctx, s.cycleTimeout)
	defer cancel()
	cycleCtx = logging.WithLogger(cycleCtx, s.logger)

	result := s.cycler.RunCycle(cycleCtx)
	s.record(result)
	return result
}

func (s *Scheduler) record(result detector.CycleResult) {
	if s.metrics != nil {
		s.metrics.Observe(result)
	}

	switch {
	case result.SkipReason == detector.SkipBusy:
		return
	case result.Skipped:
		s.health.SetHealthy(ComponentCycle, "waiting for an announcement channel")
	case result.Err != nil:
		s.health.SetUnhealthy(ComponentCycle, result.Err)
	default:
		s.health.SetHealthy(ComponentCycle,
			fmt.Sprintf("fetched %d tracks, %d new", result.Fetched, result.New))
	}

	if result.DeliveryFailures > 0 {
		s.health.SetUnhealthy(ComponentAnnouncer, fmt.Errorf("%d of %d announcements failed",
			result.DeliveryFailures, result.DeliveryFailures+result.Announced))
	} else if result.Announced > 0 {
		s.health.SetHealthy(ComponentAnnouncer,
			fmt.Sprintf("delivered %d announcements", result.Announced))
	}
}

// Health returns the health tracker.
func (s *Scheduler) Health() *Health {
	return s.health
}

// cronLogger routes cron's logging through slog. Routine scheduling chatter
// goes to debug.
type cronLogger struct {
	logger *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
