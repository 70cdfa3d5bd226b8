// Package scheduler runs the periodic content sync.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/lullabies/internal/tasks"
)

// Enqueuer stores a task on the background queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// Config controls the content sync schedule.
type Config struct {
	Enabled  bool
	Schedule string
	// Force refreshes on every run instead of only when a family is stale.
	Force bool
}

// ContentSyncScheduler enqueues a content sync task on a cron schedule.
type ContentSyncScheduler struct {
	queue  Enqueuer
	config Config

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewContentSyncScheduler creates a new scheduler instance
func NewContentSyncScheduler(queue Enqueuer, cfg Config) *ContentSyncScheduler {
	return &ContentSyncScheduler{
		queue:  queue,
		config: cfg,
		cron:   cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler if sync is enabled. The scheduler stops when
// ctx is cancelled.
func (s *ContentSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Content sync scheduler: disabled")
		return nil
	}

	if err := ValidateSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.enqueue(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRun(s.config.Schedule, time.Now())
	log.Printf("Content sync scheduler: started with schedule '%s' (%s). Next run: %v",
		s.config.Schedule,
		Describe(s.config.Schedule),
		nextRun)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *ContentSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	<-s.cron.Stop().Done()
	s.isRunning = false

	log.Printf("Content sync scheduler: stopped")
}

// RunNow enqueues a sync immediately.
func (s *ContentSyncScheduler) RunNow(ctx context.Context) (string, error) {
	return s.queue.Enqueue(ctx, tasks.SyncContentTask{Force: true})
}

// IsRunning returns whether the scheduler is active
func (s *ContentSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sync will occur
func (s *ContentSyncScheduler) GetNextRunTime() *time.Time {
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

func (s *ContentSyncScheduler) enqueue(ctx context.Context) {
	id, err := s.queue.Enqueue(ctx, tasks.SyncContentTask{Force: s.config.Force})
	if err != nil {
		log.Printf("Content sync: failed to enqueue: %v", err)
		return
	}
	log.Printf("Content sync: enqueued task %s", id)
}
