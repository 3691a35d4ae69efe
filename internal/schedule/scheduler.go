// Package schedule decides when review cycles execute: once, on a fixed
// interval, or on a cron expression. Cycles are strictly serialized; a
// file lock additionally guards against a second daemon on the same
// checkout.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"
)

// CycleFunc runs one full scheduling cycle.
type CycleFunc func(ctx context.Context) error

// Scheduler serializes cycle execution. A new cycle never starts while a
// previous one is in progress: the run loops below are sequential, and
// the flock rejects overlap from other processes sharing the checkout.
type Scheduler struct {
	lock  *flock.Flock
	cycle CycleFunc
	Logf  func(format string, args ...any)
}

// New creates a Scheduler guarding cycles with a lock file at lockPath.
func New(lockPath string, cycle CycleFunc) *Scheduler {
	return &Scheduler{
		lock:  flock.New(lockPath),
		cycle: cycle,
	}
}

func (s *Scheduler) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

// RunOnce executes a single cycle under the lock. If the lock is held by
// another process the cycle is skipped, not queued.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	acquired, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring run lock: %w", err)
	}
	if !acquired {
		s.logf("another cycle is already running, skipping")
		return nil
	}
	defer s.lock.Unlock()

	return s.cycle(ctx)
}

// RunInterval executes cycles on a fixed wall-clock interval until the
// context is cancelled. When a cycle overruns the interval, the next one
// starts immediately; cycles never overlap.
func (s *Scheduler) RunInterval(ctx context.Context, every time.Duration) error {
	s.logf("running cycles every %s", every)

	for {
		start := time.Now()
		if err := s.RunOnce(ctx); err != nil {
			s.logf("cycle failed: %v", err)
		}

		elapsed := time.Since(start)
		wait := every - elapsed
		if wait <= 0 {
			s.logf("cycle took %s (longer than interval), continuing immediately", elapsed.Round(time.Second))
			wait = 0
		}

		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// RunCron executes cycles on a cron schedule until the context is
// cancelled.
func (s *Scheduler) RunCron(ctx context.Context, expr string) error {
	sched, err := ParseCron(expr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	s.logf("running cycles on cron schedule: %s", expr)

	for {
		next := sched.Next(time.Now())
		s.logf("next cycle at %s", next.Format(time.RFC3339))

		if err := sleep(ctx, time.Until(next)); err != nil {
			return err
		}
		if err := s.RunOnce(ctx); err != nil {
			s.logf("cycle failed: %v", err)
		}
	}
}

// ParseCron parses a standard 5-field cron expression.
func ParseCron(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		// Still honor cancellation between back-to-back cycles.
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
