package poller

import (
	"context"
	"errors"
	"time"

	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/pkg/log"
)

type Runner interface {
	Run(ctx context.Context) (core.RunSummary, error)
}

// Scheduler repeats runs on a fixed interval. Runs never overlap: a tick
// that fires while a run is in progress is dropped by the ticker.
type Scheduler struct {
	runner   Runner
	Interval time.Duration
	done     chan struct{}
}

func NewScheduler(runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{runner: runner, Interval: interval, done: make(chan struct{})}
}

// Start runs once immediately and then on every tick until ctx is done.
// Fetch failures are logged and retried on the next tick; an
// authentication or configuration failure stops the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Dur("interval", s.Interval).Msg("starting scheduler")
	defer close(s.done)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		if err := s.tick(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Shutdown waits for the run in progress, if any, to finish.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) tick(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}
	_, err := s.runner.Run(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrAuthentication) || errors.Is(err, core.ErrConfiguration) {
		return err
	}
	log.FromCtx(ctx).Error().Err(err).Msg("run failed, retrying on next tick")
	return nil
}
