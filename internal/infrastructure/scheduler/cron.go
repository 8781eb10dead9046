package scheduler

import (
	"fmt"
	"simplereminder/internal/pkg/logger"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler manages one-shot timers on top of a cron runner.
type Scheduler struct {
	cron *cron.Cron
	log  logger.Logger
	mu   sync.Mutex // To protect access to job management
}

// NewScheduler creates and starts a cron scheduler.
func NewScheduler(log logger.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds()) // Use seconds precision
	c.Start()
	log.Info("Cron scheduler started.")
	return &Scheduler{
		cron: c,
		log:  log,
	}
}

// AddOnce runs cmd a single time at at. A time in the past fires on the next tick.
func (s *Scheduler) AddOnce(at time.Time, cmd func()) cron.EntryID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.cron.Schedule(&onceSchedule{at: at}, cron.FuncJob(cmd))
	s.log.Debug(fmt.Sprintf("Added one-shot job with ID %d at %s", id, at.Format(time.RFC3339)))
	return id
}

// RemoveJob removes a job from the scheduler by its EntryID.
func (s *Scheduler) RemoveJob(id cron.EntryID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cron.Remove(id)
	s.log.Debug(fmt.Sprintf("Removed cron job with ID %d", id))
}

// Stop stops the cron scheduler and waits for running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	ctx := s.cron.Stop()
	s.mu.Unlock()

	// running jobs may still call RemoveJob, so wait without the lock
	<-ctx.Done()
	s.log.Info("Cron scheduler stopped.")
}

// Entries returns the list of scheduled entries. Useful for debugging.
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron.Entries()
}

// onceSchedule activates exactly once. Later activations return the zero
// time, which cron treats as never.
type onceSchedule struct {
	at   time.Time
	used atomic.Bool
}

func (o *onceSchedule) Next(t time.Time) time.Time {
	if o.used.Swap(true) {
		return time.Time{}
	}
	if o.at.Before(t) {
		return t
	}
	return o.at
}
