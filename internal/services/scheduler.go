package services

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/eventra/backend/internal/models"
)

// Sweeper is the slice of the distribution engine the scheduler drives.
type Sweeper interface {
	ProcessFinishedEvents(ctx context.Context) (*models.SweepSummary, error)
}

// SweepScheduler invokes the engine on a fixed interval. A tick that fires
// while a sweep is still running is skipped, not queued; a failed sweep is
// logged and never stops the ticker. The in-flight guard is per-process
// only. Exactly-once across processes is the ledger's unique index.
type SweepScheduler struct {
	engine   Sweeper
	interval time.Duration

	running  atomic.Bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewSweepScheduler(engine Sweeper, interval time.Duration) *SweepScheduler {
	return &SweepScheduler{
		engine:   engine,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. One sweep runs immediately on startup.
func (s *SweepScheduler) Start() {
	go s.run()
}

func (s *SweepScheduler) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	go s.runSweep()
	for {
		select {
		case <-ticker.C:
			// Each sweep runs in its own goroutine so a long batch
			// cannot delay the schedule; the guard turns overlap
			// into a skip.
			go s.runSweep()
		case <-s.stop:
			return
		}
	}
}

func (s *SweepScheduler) runSweep() {
	if !s.running.CompareAndSwap(false, true) {
		log.Printf("[SWEEP] previous sweep still running, skipping this tick")
		return
	}
	defer s.running.Store(false)

	sweepID := uuid.NewString()
	summary, err := s.engine.ProcessFinishedEvents(context.Background())
	if err != nil {
		log.Printf("[SWEEP] %s failed: %v", sweepID, err)
		return
	}

	log.Printf("[SWEEP] %s completed: processed=%d skipped=%d failed=%d",
		sweepID, summary.ProcessedCount, summary.SkippedCount, summary.FailedCount)
	for _, e := range summary.Errors {
		log.Printf("[SWEEP] %s event %s failed: %s", sweepID, e.EventID, e.Reason)
	}
}

// Stop ends the sweep loop and waits for it to exit. An in-flight sweep is
// not cancelled; an interrupted batch is simply finished by the next
// process that sweeps. Safe to call more than once.
func (s *SweepScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}
