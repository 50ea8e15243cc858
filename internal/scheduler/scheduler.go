// Package scheduler runs the periodic maintenance jobs of go-advice
package scheduler

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "time/tzdata"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a cron runner with named jobs
type Scheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	location *time.Location
	jobs     map[string]cron.EntryID
	started  bool
}

// New creates a scheduler running jobs in the given timezone
func New(timezone string) (*Scheduler, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	logger := cron.PrintfLogger(log.Default())
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	return &Scheduler{
		cron:     c,
		location: loc,
		jobs:     make(map[string]cron.EntryID),
	}, nil
}

// AddJob registers fn under name with a cron spec ("@every 15m", "30 3 * * *").
// Names are unique.
func (s *Scheduler) AddJob(name, spec string, fn func()) error {
	if fn == nil {
		return errors.New("job must not be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("job %q already registered", name)
	}
	id, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		fn()
		log.Printf("[SCHED]: job %s done in %v", name, time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("add job %s: %w", name, err)
	}
	s.jobs[name] = id
	log.Printf("[SCHED]: registered job %s (%s)", name, spec)
	return nil
}

// Jobs returns the registered job names with their next run time
func (s *Scheduler) Jobs() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.jobs))
	for name, id := range s.jobs {
		out[name] = s.cron.Entry(id).Next
	}
	return out
}

// Location returns the scheduler location
func (s *Scheduler) Location() *time.Location {
	return s.location
}

// Start begins cron execution. Calling it twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	log.Printf("[SCHED]: started with %d jobs (%s)", len(s.jobs), s.location)
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	log.Printf("[SCHED]: stopped")
}
