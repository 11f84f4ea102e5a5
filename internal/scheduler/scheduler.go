// Package scheduler runs the scrape on a cron schedule for recurring
// searches. Without a schedule the tool is a one-shot CLI and this package
// is not involved.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// tickTimeout bounds one scheduled scrape, including any time spent waiting
// on a human to solve a challenge.
const tickTimeout = 30 * time.Minute

// Job is one scheduled task.
type Job func(ctx context.Context) error

// Scheduler manages periodic scrape runs.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a scheduler in the local timezone. Ticks never overlap: the
// scrape owns one browser and one operator console, so a tick that fires
// while the previous run is still going (e.g. parked at a challenge prompt)
// is skipped rather than started concurrently.
func New(log zerolog.Logger) *Scheduler {
	l := log.With().Str("component", "scheduler").Logger()
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{l}))),
		log:  l,
	}
}

// cronLogger adapts zerolog to cron's logger so skipped ticks show up in the
// run log.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// Add registers a job under a standard five-field cron expression, e.g.
// "0 7 * * *" for 7:00 every morning.
func (s *Scheduler) Add(name, schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
		defer cancel()

		s.log.Info().Str("job", name).Msg("starting scheduled run")
		start := time.Now()

		if err := job(ctx); err != nil {
			s.log.Error().Str("job", name).Err(err).Msg("scheduled run failed")
			return
		}
		s.log.Info().Str("job", name).Dur("took", time.Since(start)).Msg("scheduled run completed")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s (%q): %w", name, schedule, err)
	}

	s.log.Info().Str("job", name).Str("schedule", schedule).Msg("job scheduled")
	return nil
}

// Run starts the cron loop and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}
