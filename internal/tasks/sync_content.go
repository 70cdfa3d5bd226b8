package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/lullabies/internal/entities"
	"github.com/mrlokans/lullabies/internal/repository"
)

// SyncContentTask refreshes content families from the content API. An empty
// Family refreshes every family.
type SyncContentTask struct {
	Family entities.SyncType `json:"family,omitempty"`
	Force  bool              `json:"force"`
}

// Config returns the queue configuration for content sync tasks.
func (t SyncContentTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sync_content",
		MaxAttempts: 2,
		Backoff:     5 * time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
		},
	}
}

// SyncContentProcessor creates a processor function for SyncContentTask.
func SyncContentProcessor(syncers ...repository.Syncer) backlite.QueueProcessor[SyncContentTask] {
	return func(ctx context.Context, task SyncContentTask) error {
		return RunSync(ctx, task.Family, task.Force, syncers...)
	}
}

// RunSync refreshes the matching families one after another. Failures of
// one family do not stop the next; all failures are returned joined.
func RunSync(ctx context.Context, family entities.SyncType, force bool, syncers ...repository.Syncer) error {
	var errs []error
	matched := false

	for _, s := range syncers {
		if family != "" && s.Family() != family {
			continue
		}
		matched = true

		if force {
			if err := s.Refresh(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", s.Family(), err))
			}
			continue
		}

		ran, err := s.RefreshIfStale(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Family(), err))
			continue
		}
		if !ran {
			log.Printf("[TASK] %s is fresh, skipping sync", s.Family())
		}
	}

	if !matched {
		return fmt.Errorf("unknown content family %q", family)
	}
	return errors.Join(errs...)
}

// NewSyncContentQueue creates a backlite queue for content syncs.
func NewSyncContentQueue(syncers ...repository.Syncer) backlite.Queue {
	return backlite.NewQueue(SyncContentProcessor(syncers...))
}
