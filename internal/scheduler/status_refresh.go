// Package scheduler runs the nightly donor maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/donorbase/internal/tasks"
)

// StatusRefreshScheduler enqueues the donor status refresh and cleanup tasks
// on a cron schedule. The heavy lifting happens in the task queue workers;
// the scheduler only decides when.
type StatusRefreshScheduler struct {
	client        *tasks.Client
	schedule      string
	retentionDays int

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewStatusRefreshScheduler creates a new scheduler instance.
func NewStatusRefreshScheduler(client *tasks.Client, schedule string, retentionDays int) *StatusRefreshScheduler {
	return &StatusRefreshScheduler{
		client:        client,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *StatusRefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.client == nil {
		log.Printf("Status refresh scheduler: task queue not configured, skipping")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.enqueueJobs()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Status refresh scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running enqueue to
// finish.
func (s *StatusRefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	// Release the watcher goroutine started in Start.
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	log.Printf("Status refresh scheduler: stopped")
}

// RunNow enqueues the maintenance jobs immediately.
func (s *StatusRefreshScheduler) RunNow() {
	go s.enqueueJobs()
}

// IsRunning returns whether the scheduler is active.
func (s *StatusRefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next refresh will be enqueued.
func (s *StatusRefreshScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *StatusRefreshScheduler) enqueueJobs() {
	_, err := s.client.Add(tasks.RefreshDonorStatusesTask{}).Save()
	if err != nil {
		log.Printf("Status refresh scheduler: failed to enqueue status refresh: %v", err)
	}

	_, err = s.client.Add(tasks.CleanupAuditEventsTask{RetentionDays: s.retentionDays}).Save()
	if err != nil {
		log.Printf("Status refresh scheduler: failed to enqueue audit cleanup: %v", err)
	}

	_, err = s.client.Add(tasks.CleanupImportRunsTask{RetentionDays: s.retentionDays}).Save()
	if err != nil {
		log.Printf("Status refresh scheduler: failed to enqueue import run cleanup: %v", err)
	}
}
