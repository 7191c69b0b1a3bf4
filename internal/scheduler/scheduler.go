package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a scheduled unit of work
type Job func(ctx context.Context) error

// Scheduler runs jobs on standard five-field cron specs. A run that is
// still going when its next tick arrives causes that tick to be skipped.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
	log  zerolog.Logger

	mu   sync.Mutex
	jobs map[string]cron.Job
}

// New creates a scheduler whose jobs run with ctx
func New(ctx context.Context, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		ctx:  ctx,
		log:  log.With().Str("component", "scheduler").Logger(),
		jobs: make(map[string]cron.Job),
	}
}

// Add registers job under name on spec (for example "0 22 * * 1-5")
func (s *Scheduler) Add(name, spec string, job Job) error {
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		s.run(name, job)
	}))
	if _, err := s.cron.AddJob(spec, wrapped); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}

	s.mu.Lock()
	s.jobs[name] = wrapped
	s.mu.Unlock()
	return nil
}

// RunNow executes a registered job immediately
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	job.Run()
	return nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.Info().Time("next", e.Next).Msg("scheduled")
	}
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) run(name string, job Job) {
	if s.ctx.Err() != nil {
		return
	}
	start := time.Now()
	s.log.Info().Str("job", name).Msg("running")
	if err := job(s.ctx); err != nil {
		s.log.Error().Err(err).Str("job", name).Msg("job failed")
		return
	}
	s.log.Info().Str("job", name).Dur("took", time.Since(start)).Msg("job done")
}
