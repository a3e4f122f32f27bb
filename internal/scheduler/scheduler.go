package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-lookup/internal/log"
)

// Pruner drops expired entries and reports how many were removed.
type Pruner interface {
	Prune() int
}

// Scheduler periodically sweeps expired lookups out of the history store.
type Scheduler struct {
	scheduler *gocron.Scheduler
	pruner    Pruner
	interval  time.Duration
}

// New creates a new Scheduler.
func New(pruner Pruner, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		pruner:    pruner,
		interval:  interval,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.pruner == nil {
		log.Info("scheduler: no history store configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.sweep)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Infof("scheduler: history sweep every %d minutes", minutes)
	return nil
}

func (s *Scheduler) sweep() {
	removed := s.pruner.Prune()
	log.Infow("scheduler: history sweep completed", "removed", removed)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
