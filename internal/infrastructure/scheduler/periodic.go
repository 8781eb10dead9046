package scheduler

import (
	"fmt"
	"simplereminder/internal/pkg/logger"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Periodic runs named background tasks on a fixed interval.
type Periodic struct {
	s   gocron.Scheduler
	log logger.Logger
}

// NewPeriodic creates and starts a periodic job runner.
func NewPeriodic(log logger.Logger) (*Periodic, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create periodic scheduler: %w", err)
	}
	s.Start()
	return &Periodic{s: s, log: log}, nil
}

// Every runs task every interval. A run that is still in progress when the
// next one is due causes that next run to be skipped.
func (p *Periodic) Every(name string, interval time.Duration, task func()) error {
	_, err := p.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to add periodic job %s: %w", name, err)
	}
	p.log.Info(fmt.Sprintf("Periodic job %s scheduled every %s", name, interval))
	return nil
}

// Jobs returns the number of registered jobs.
func (p *Periodic) Jobs() int {
	return len(p.s.Jobs())
}

// Stop shuts the runner down, waiting for running tasks.
func (p *Periodic) Stop() {
	if err := p.s.Shutdown(); err != nil {
		p.log.Error("🔴 ERROR: Failed to shut down periodic scheduler", err)
		return
	}
	p.log.Info("Periodic scheduler stopped.")
}
