// Package lullabies provides database operations for lullabies and their
// name translations, including live localized views.
//
// # Interface Implementation
//
//	var _ repository.LullabyStore = (*Repository)(nil)
//	var _ downloads.DownloadMarker = (*Repository)(nil)
//
// # Usage
//
//	repo := lullabies.NewRepository(db.DB, db.Tracker)
//	for rows := range repo.ObserveLocalized(ctx, "fr") { ... }
package lullabies

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/lullabies/internal/database/watch"
	"github.com/mrlokans/lullabies/internal/entities"
)

const (
	tableLullabies    = "lullabies"
	tableTranslations = "lullaby_translations"
	tableFavourites   = "favourite_metadata"

	insertBatchSize = 200
)

// remoteColumns are overwritten when a synced row replaces a cached one.
// Favourite and download state belong to the device and are kept.
var remoteColumns = []string{
	"internal_id", "name", "audio_path", "file_size", "image_path",
	"duration", "popularity", "is_free", "updated_at",
}

// Repository handles all lullaby database operations.
type Repository struct {
	db      *gorm.DB
	tracker *watch.Tracker
}

// NewRepository creates a new lullabies repository.
func NewRepository(db *gorm.DB, tracker *watch.Tracker) *Repository {
	return &Repository{db: db, tracker: tracker}
}

// GetByDocumentID returns the lullaby or nil if it is not cached.
func (r *Repository) GetByDocumentID(ctx context.Context, documentID string) (*entities.Lullaby, error) {
	var lullaby entities.Lullaby
	err := r.db.WithContext(ctx).Where("document_id = ?", documentID).First(&lullaby).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lullaby, nil
}

// GetAll returns every cached lullaby in catalog order.
func (r *Repository) GetAll(ctx context.Context) ([]entities.Lullaby, error) {
	var lullabies []entities.Lullaby
	err := r.db.WithContext(ctx).Order("internal_id ASC, document_id ASC").Find(&lullabies).Error
	return lullabies, err
}

// Insert stores a single lullaby, replacing remote-owned columns on conflict.
func (r *Repository) Insert(ctx context.Context, lullaby *entities.Lullaby) error {
	return r.upsert(ctx).Create(lullaby).Error
}

// InsertAll stores lullabies in bulk, replacing remote-owned columns on conflict.
func (r *Repository) InsertAll(ctx context.Context, lullabies []entities.Lullaby) error {
	if len(lullabies) == 0 {
		return nil
	}
	return r.upsert(ctx).CreateInBatches(lullabies, insertBatchSize).Error
}

func (r *Repository) upsert(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns(remoteColumns),
	})
}

// Update saves every column of the lullaby.
func (r *Repository) Update(ctx context.Context, lullaby *entities.Lullaby) error {
	return r.db.WithContext(ctx).Save(lullaby).Error
}

// Delete removes a lullaby with its translations and favourite metadata.
func (r *Repository) Delete(ctx context.Context, documentID string) error {
	return r.tracker.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("lullaby_document_id = ?", documentID).Delete(&entities.LullabyTranslation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ? AND item_type = ?", documentID, entities.ItemTypeLullaby).
			Delete(&entities.FavouriteMetadata{}).Error; err != nil {
			return err
		}
		return tx.Where("document_id = ?", documentID).Delete(&entities.Lullaby{}).Error
	})
}

// DeleteAll removes every lullaby and the lullaby favourite metadata.
// Translations are left to DeleteAllTranslations.
func (r *Repository) DeleteAll(ctx context.Context) error {
	return r.tracker.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("item_type = ?", entities.ItemTypeLullaby).Delete(&entities.FavouriteMetadata{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.Lullaby{}).Error
	})
}

// Count returns the number of cached lullabies.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Lullaby{}).Count(&count).Error
	return count, err
}

// MarkDownloaded records a completed download. Re-applying the same values is a no-op.
func (r *Repository) MarkDownloaded(ctx context.Context, documentID, localPath string) error {
	result := r.db.WithContext(ctx).Model(&entities.Lullaby{}).
		Where("document_id = ?", documentID).
		Updates(map[string]any{
			"is_downloaded":    true,
			"local_audio_path": localPath,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("lullaby %s: %w", documentID, entities.ErrNotFound)
	}
	return nil
}

// ObserveAll emits every cached lullaby now and after each change.
func (r *Repository) ObserveAll(ctx context.Context) <-chan []entities.Lullaby {
	return watch.Query(ctx, r.tracker, []string{tableLullabies}, r.GetAll)
}
