package service

import (
	"context"
	"fmt"
	"simplereminder/internal/infrastructure/scheduler"
	appErrors "simplereminder/internal/pkg/errors"
	"simplereminder/internal/pkg/logger"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultDeliveryTimeout = 10 * time.Second

// scheduledJob is a pending one-shot wake-up.
type scheduledJob struct {
	entryID cron.EntryID
	at      time.Time
	gen     uint64
}

type schedulerService struct {
	cronScheduler   *scheduler.Scheduler
	handler         DeliveryHandler
	exactAllowed    func() bool
	inexactWindow   time.Duration
	deliveryTimeout time.Duration
	log             logger.Logger
	// map[identity]scheduledJob
	jobStore map[int]scheduledJob
	nextGen  uint64
	mu       sync.Mutex // Protect jobStore and handler access
}

// SchedulerOption configures a SchedulerService.
type SchedulerOption func(*schedulerService)

// WithExactPermission sets the source of the exact-scheduling permission.
// Without it, exact scheduling is always permitted.
func WithExactPermission(allowed func() bool) SchedulerOption {
	return func(s *schedulerService) { s.exactAllowed = allowed }
}

// WithInexactWindow sets the granularity inexact wake-ups are rounded up to.
func WithInexactWindow(d time.Duration) SchedulerOption {
	return func(s *schedulerService) { s.inexactWindow = d }
}

// WithDeliveryTimeout bounds the processing time of one fired wake-up.
func WithDeliveryTimeout(d time.Duration) SchedulerOption {
	return func(s *schedulerService) { s.deliveryTimeout = d }
}

// NewSchedulerService creates a new instance of SchedulerService implementation.
// The delivery handler has to be set before the first wake-up fires.
func NewSchedulerService(cronScheduler *scheduler.Scheduler, log logger.Logger, opts ...SchedulerOption) SchedulerService {
	s := &schedulerService{
		cronScheduler:   cronScheduler,
		exactAllowed:    func() bool { return true },
		inexactWindow:   time.Minute,
		deliveryTimeout: defaultDeliveryTimeout,
		log:             log,
		jobStore:        make(map[int]scheduledJob),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetDeliveryHandler sets the function fired wake-ups are delivered to.
// This is called during dependency injection setup to break circular dependency.
func (s *schedulerService) SetDeliveryHandler(handler DeliveryHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// fireTime applies the inexact fallback when exact scheduling is not permitted.
func (s *schedulerService) fireTime(at time.Time, identity int) time.Time {
	if s.exactAllowed() || s.inexactWindow <= 0 {
		return at
	}
	rounded := at.Truncate(s.inexactWindow)
	if rounded.Before(at) {
		rounded = rounded.Add(s.inexactWindow)
	}
	s.log.Warn(fmt.Sprintf("%v: wake-up %d requested for %s will fire at %s",
		appErrors.ErrSchedulingDegraded, identity, at.Format(time.RFC3339), rounded.Format(time.RFC3339)))
	return rounded
}

// ScheduleAt requests a one-shot wake-up, replacing any pending one with the same identity.
func (s *schedulerService) ScheduleAt(ctx context.Context, at time.Time, payload string, identity int) error {
	if at.IsZero() {
		return fmt.Errorf("%w: zero fire time for wake-up %d", appErrors.ErrScheduling, identity)
	}
	fireAt := s.fireTime(at, identity)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handler == nil {
		s.log.Error("Delivery handler function is not set in SchedulerService", nil)
		return fmt.Errorf("%w: delivery handler not set", appErrors.ErrInternalServer)
	}

	if prev, ok := s.jobStore[identity]; ok {
		s.cronScheduler.RemoveJob(prev.entryID)
	}

	s.nextGen++
	gen := s.nextGen
	entryID := s.cronScheduler.AddOnce(fireAt, func() {
		s.deliver(identity, gen, payload)
	})
	s.jobStore[identity] = scheduledJob{entryID: entryID, at: fireAt, gen: gen}

	s.log.Debug(fmt.Sprintf("Scheduled wake-up %d at %s (Job ID: %d)", identity, fireAt.Format(time.RFC3339), entryID))
	return nil
}

// deliver runs a fired wake-up. The job is removed from the store before the
// handler runs so the handler may schedule the same identity again.
func (s *schedulerService) deliver(identity int, gen uint64, payload string) {
	s.mu.Lock()
	job, ok := s.jobStore[identity]
	if !ok || job.gen != gen {
		// replaced or canceled after cron picked it up
		s.mu.Unlock()
		return
	}
	delete(s.jobStore, identity)
	handler := s.handler
	s.mu.Unlock()

	s.cronScheduler.RemoveJob(job.entryID)

	ctx, cancel := context.WithTimeout(context.Background(), s.deliveryTimeout)
	defer cancel()

	s.log.Debug(fmt.Sprintf("Delivering wake-up %d", identity))
	if err := handler(ctx, payload); err != nil {
		s.log.Error(fmt.Sprintf("Error handling wake-up %d", identity), err)
	}
}

// Cancel drops the pending wake-up for identity. Nothing pending is not an error.
func (s *schedulerService) Cancel(ctx context.Context, identity int) error {
	s.mu.Lock()
	job, ok := s.jobStore[identity]
	if ok {
		delete(s.jobStore, identity)
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}
	s.cronScheduler.RemoveJob(job.entryID)
	s.log.Debug(fmt.Sprintf("Cancelled wake-up %d (Job ID: %d)", identity, job.entryID))
	return nil
}

// Pending returns the fire time of every pending wake-up.
func (s *schedulerService) Pending() map[int]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make(map[int]time.Time, len(s.jobStore))
	for identity, job := range s.jobStore {
		pending[identity] = job.at
	}
	return pending
}

// Stop stops the underlying scheduler. Pending wake-ups are dropped.
func (s *schedulerService) Stop() {
	s.cronScheduler.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobStore = make(map[int]scheduledJob)
}
