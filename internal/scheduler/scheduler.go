// Package scheduler runs the periodic budget alert and bill reminder scans.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scan is one periodic job. It returns how many notifications it produced.
type Scan func(ctx context.Context) (int, error)

// Job binds a scan to a cron spec.
type Job struct {
	Name     string
	Schedule string
	Run      Scan
}

// Scheduler owns a cron instance. Runs of the same job never overlap.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New registers jobs. timeout bounds a single run; zero means no limit.
func New(jobs []Job, timeout time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{}))),
		timeout: timeout,
	}
	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.Schedule, s.wrap(j)); err != nil {
			return nil, fmt.Errorf("schedule %s (%q): %w", j.Name, j.Schedule, err)
		}
	}
	return s, nil
}

// Start begins firing jobs. ctx is the parent of every run.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.cron.Start()
	slog.InfoContext(ctx, "Scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop prevents new runs and waits for running ones or ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		cancel()
		slog.InfoContext(ctx, "Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		cancel()
		slog.WarnContext(ctx, "Scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is started.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) parent() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *Scheduler) wrap(j Job) func() {
	return func() {
		ctx := s.parent()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		RunOnce(ctx, j)
	}
}

// RunOnce executes j immediately and logs the outcome.
func RunOnce(ctx context.Context, j Job) (int, error) {
	start := time.Now()
	n, err := j.Run(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Scheduled job failed",
			"job", j.Name,
			"produced", n,
			"duration", time.Since(start),
			"error", err)
		return n, err
	}
	slog.InfoContext(ctx, "Scheduled job completed",
		"job", j.Name,
		"produced", n,
		"duration", time.Since(start))
	return n, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
