package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Sweeper is the part of the session store the scheduler drives.
type Sweeper interface {
	Sweep(maxIdle time.Duration) int
	Len() int
}

// Scheduler periodically evicts idle map sessions.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sessions  Sweeper
	interval  time.Duration
	maxIdle   time.Duration
}

// New creates a new Scheduler.
func New(sessions Sweeper, interval, maxIdle time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		sessions:  sessions,
		interval:  interval,
		maxIdle:   maxIdle,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.maxIdle <= 0 {
		log.Println("scheduler: session expiry disabled; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(s.sweep)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) sweep() {
	if n := s.sessions.Sweep(s.maxIdle); n > 0 {
		log.Printf("scheduler: swept %d idle sessions, %d remain", n, s.sessions.Len())
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
