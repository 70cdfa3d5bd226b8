// Package sync provides database operations for per-family sync progress.
//
// Each content family (lullabies, stories) has a single progress row. The
// row's LastSucceededAt is the "last synced at" timestamp used by the
// staleness check; it only moves when a refresh has written everything.
//
// # Interface Implementation
//
//	var _ repository.SyncStateStore = (*Repository)(nil)
//
// # Usage
//
//	repo := sync.NewRepository(db.DB)
//	err := repo.StartSync(ctx, entities.SyncTypeLullabies)
package sync

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/lullabies/internal/entities"
)

// staleRunThreshold is how long a running row may go without an update
// before it is considered interrupted.
const staleRunThreshold = 10 * time.Minute

// Repository handles all sync progress database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new sync repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// WithClock replaces the time source.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// GetSyncProgress returns the progress row for syncType or nil if the family
// has never been synced.
func (r *Repository) GetSyncProgress(ctx context.Context, syncType entities.SyncType) (*entities.SyncProgress, error) {
	var progress entities.SyncProgress
	err := r.db.WithContext(ctx).Where("sync_type = ?", syncType).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// StartSync creates or resets the progress row of syncType.
func (r *Repository) StartSync(ctx context.Context, syncType entities.SyncType) error {
	progress, err := r.GetSyncProgress(ctx, syncType)
	if err != nil {
		return err
	}

	now := r.now()
	if progress == nil {
		progress = &entities.SyncProgress{
			SyncType:  syncType,
			Status:    entities.SyncStatusRunning,
			StartedAt: now,
			UpdatedAt: now,
		}
		return r.db.WithContext(ctx).Create(progress).Error
	}

	// Reset existing record, keeping the last successful timestamp.
	progress.Status = entities.SyncStatusRunning
	progress.TotalItems = 0
	progress.Succeeded = 0
	progress.Skipped = 0
	progress.Error = ""
	progress.StartedAt = now
	progress.UpdatedAt = now
	progress.CompletedAt = nil

	return r.db.WithContext(ctx).Save(progress).Error
}

// SyncResult summarizes a finished refresh.
type SyncResult struct {
	TotalItems int
	Succeeded  int
	Skipped    int
	Err        error
}

// CompleteSync marks the refresh of syncType as completed or failed. Only a
// successful refresh advances LastSucceededAt.
func (r *Repository) CompleteSync(ctx context.Context, syncType entities.SyncType, result SyncResult) error {
	now := r.now()
	updates := map[string]any{
		"status":       entities.SyncStatusCompleted,
		"total_items":  result.TotalItems,
		"succeeded":    result.Succeeded,
		"skipped":      result.Skipped,
		"error":        "",
		"updated_at":   now,
		"completed_at": now,
	}
	if result.Err != nil {
		updates["status"] = entities.SyncStatusFailed
		updates["error"] = result.Err.Error()
	} else {
		updates["last_succeeded_at"] = now
	}

	return r.db.WithContext(ctx).Model(&entities.SyncProgress{}).
		Where("sync_type = ?", syncType).
		Updates(updates).Error
}

// LastSyncedAt returns when syncType last completed successfully, or nil.
func (r *Repository) LastSyncedAt(ctx context.Context, syncType entities.SyncType) (*time.Time, error) {
	progress, err := r.GetSyncProgress(ctx, syncType)
	if err != nil || progress == nil {
		return nil, err
	}
	return progress.LastSucceededAt, nil
}

// IsSyncRunning checks if a refresh of syncType is in progress. A running
// row not updated for staleRunThreshold is closed as interrupted.
func (r *Repository) IsSyncRunning(ctx context.Context, syncType entities.SyncType) (bool, error) {
	var progress entities.SyncProgress
	err := r.db.WithContext(ctx).
		Where("sync_type = ? AND status = ?", syncType, entities.SyncStatusRunning).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if progress.UpdatedAt.Before(r.now().Add(-staleRunThreshold)) {
		_ = r.CompleteSync(ctx, syncType, SyncResult{Err: errors.New("sync was interrupted")})
		return false, nil
	}

	return true, nil
}
