package repository

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	syncrepo "github.com/mrlokans/lullabies/internal/database/sync"
	"github.com/mrlokans/lullabies/internal/entities"
)

// familySyncer runs the staleness check and refresh bookkeeping shared by
// every content family. Concurrent refreshes of one family share a single
// pass.
type familySyncer struct {
	family entities.SyncType
	state  SyncStateStore
	policy StalenessPolicy
	count  func(ctx context.Context) (int64, error)
	pass   func(ctx context.Context) (syncrepo.SyncResult, error)
	group  singleflight.Group
}

func (s *familySyncer) needsSync(ctx context.Context) (bool, error) {
	last, err := s.state.LastSyncedAt(ctx, s.family)
	if err != nil {
		return false, fmt.Errorf("read last sync of %s: %w", s.family, err)
	}
	count, err := s.count(ctx)
	if err != nil {
		return false, fmt.Errorf("count %s: %w", s.family, err)
	}
	return s.policy.NeedsSync(last, count), nil
}

func (s *familySyncer) refreshIfStale(ctx context.Context) (bool, error) {
	stale, err := s.needsSync(ctx)
	if err != nil {
		return false, err
	}
	if !stale {
		return false, nil
	}
	return true, s.refresh(ctx)
}

func (s *familySyncer) refresh(ctx context.Context) error {
	_, err, shared := s.group.Do(string(s.family), func() (any, error) {
		return nil, s.run(ctx)
	})
	if shared {
		log.Printf("[SYNC] Joined in-flight %s refresh", s.family)
	}
	return err
}

func (s *familySyncer) run(ctx context.Context) error {
	log.Printf("[SYNC] Refreshing %s", s.family)
	if err := s.state.StartSync(ctx, s.family); err != nil {
		return fmt.Errorf("start %s sync: %w", s.family, err)
	}

	result, err := s.pass(ctx)
	result.Err = err
	if completeErr := s.state.CompleteSync(ctx, s.family, result); completeErr != nil {
		log.Printf("[SYNC] Failed to record %s sync result: %v", s.family, completeErr)
	}
	if err != nil {
		return err
	}

	log.Printf("[SYNC] Refreshed %s: %d items, %d skipped", s.family, result.Succeeded, result.Skipped)
	return nil
}

// syncInBackground refreshes a stale family without tying the pass to the
// caller's lifetime. Failures are logged; callers keep reading the cache.
func (s *familySyncer) syncInBackground(ctx context.Context) {
	go func() {
		if _, err := s.refreshIfStale(context.WithoutCancel(ctx)); err != nil {
			log.Printf("[SYNC] %s refresh failed, serving cached data: %v", s.family, err)
		}
	}()
}
