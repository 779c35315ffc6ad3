// Package scheduler wires up the cron job that periodically refreshes the
// store from the authority.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher is the unit of work run on every tick.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler wraps robfig/cron and manages the refresh loop.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	interval  time.Duration
	spec      string // cron spec, e.g. "@every 5m"
	done      chan struct{}
}

// New creates a Scheduler that fires every interval.
func New(r Refresher, interval time.Duration) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		refresher: r,
		interval:  interval,
		spec:      fmt.Sprintf("@every %s", interval),
		done:      make(chan struct{}),
	}
}

// Start registers the job and starts the scheduler. Also runs one refresh
// immediately so the store is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", s.interval)
	}
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started, spec: %s", s.spec)

	go func() {
		defer close(s.done)
		s.runRefresh(ctx)
	}()

	return nil
}

// Stop shuts down the scheduler and waits for running refreshes. It must
// only be called after a successful Start.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	<-s.done
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	if err := s.refresher.Refresh(ctx); err != nil {
		log.Printf("[scheduler] Refresh error: %v", err)
		return
	}
	log.Println("[scheduler] Refresh complete")
}
