// Package favourites keeps the favourite flag of lullabies and stories in
// step with the favourite_metadata rows that record when an item was
// favourited.
//
// The flag on the primary row is used for fast filtering; the metadata row is
// the source of truth for most-recent-first ordering. Both are always changed
// in the same transaction.
//
// # Interface Implementation
//
//	var _ http.FavouritesStore = (*Repository)(nil)
//
// # Usage
//
//	repo := favourites.NewRepository(db.DB, db.Tracker)
//	isFavourite, err := repo.Toggle(ctx, "doc-1", entities.ItemTypeStory)
package favourites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/lullabies/internal/database/watch"
	"github.com/mrlokans/lullabies/internal/entities"
)

// ErrUnknownItemType is returned for an item type other than lullaby or story.
var ErrUnknownItemType = errors.New("unknown item type")

// Repository handles all favourites database operations.
type Repository struct {
	db      *gorm.DB
	tracker *watch.Tracker
	now     func() time.Time
}

// NewRepository creates a new favourites repository.
func NewRepository(db *gorm.DB, tracker *watch.Tracker) *Repository {
	return &Repository{db: db, tracker: tracker, now: time.Now}
}

// WithClock replaces the time source used to stamp metadata rows.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

func modelFor(itemType entities.ItemType) (any, error) {
	switch itemType {
	case entities.ItemTypeLullaby:
		return &entities.Lullaby{}, nil
	case entities.ItemTypeStory:
		return &entities.Story{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownItemType, itemType)
	}
}

// Toggle flips the favourite flag of an item and inserts or deletes its
// metadata row accordingly. It returns the new flag value. Any failure rolls
// back both changes.
func (r *Repository) Toggle(ctx context.Context, itemID string, itemType entities.ItemType) (bool, error) {
	var isFavourite bool
	err := r.tracker.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		current, err := currentFlag(tx, itemID, itemType)
		if err != nil {
			return err
		}
		isFavourite = !current
		return r.apply(tx, itemID, itemType, isFavourite)
	})
	if err != nil {
		return false, err
	}
	return isFavourite, nil
}

// SetFavourite forces the favourite state of an item. Setting the state it
// already has leaves the existing metadata timestamp untouched.
func (r *Repository) SetFavourite(ctx context.Context, itemID string, itemType entities.ItemType, isFavourite bool) error {
	return r.tracker.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		current, err := currentFlag(tx, itemID, itemType)
		if err != nil {
			return err
		}
		if current == isFavourite {
			return nil
		}
		return r.apply(tx, itemID, itemType, isFavourite)
	})
}

func currentFlag(tx *gorm.DB, itemID string, itemType entities.ItemType) (bool, error) {
	model, err := modelFor(itemType)
	if err != nil {
		return false, err
	}

	var row struct {
		IsFavourite bool
	}
	result := tx.Model(model).Select("is_favourite").Where("document_id = ?", itemID).Limit(1).Scan(&row)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, fmt.Errorf("%s %s: %w", itemType, itemID, entities.ErrNotFound)
	}
	return row.IsFavourite, nil
}

func (r *Repository) apply(tx *gorm.DB, itemID string, itemType entities.ItemType, isFavourite bool) error {
	model, err := modelFor(itemType)
	if err != nil {
		return err
	}
	if err := tx.Model(model).Where("document_id = ?", itemID).Update("is_favourite", isFavourite).Error; err != nil {
		return fmt.Errorf("update favourite flag: %w", err)
	}

	if !isFavourite {
		err := tx.Where("item_id = ? AND item_type = ?", itemID, itemType).Delete(&entities.FavouriteMetadata{}).Error
		if err != nil {
			return fmt.Errorf("delete favourite metadata: %w", err)
		}
		return nil
	}

	meta := entities.FavouriteMetadata{
		ItemID:       itemID,
		ItemType:     itemType,
		FavouritedAt: r.now(),
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}, {Name: "item_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"favourited_at"}),
	}).Create(&meta).Error
	if err != nil {
		return fmt.Errorf("insert favourite metadata: %w", err)
	}
	return nil
}

// GetFavouriteCount returns the number of favourited items of itemType, or
// of all types when itemType is empty.
func (r *Repository) GetFavouriteCount(ctx context.Context, itemType entities.ItemType) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entities.FavouriteMetadata{})
	if itemType != "" {
		query = query.Where("item_type = ?", itemType)
	}
	err := query.Count(&count).Error
	return count, err
}

// HasMetadata reports whether a metadata row exists for the item.
func (r *Repository) HasMetadata(ctx context.Context, itemID string, itemType entities.ItemType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.FavouriteMetadata{}).
		Where("item_id = ? AND item_type = ?", itemID, itemType).
		Count(&count).Error
	return count > 0, err
}

// GetMetadata returns metadata rows of itemType, most recently favourited first.
func (r *Repository) GetMetadata(ctx context.Context, itemType entities.ItemType) ([]entities.FavouriteMetadata, error) {
	var rows []entities.FavouriteMetadata
	err := r.db.WithContext(ctx).
		Where("item_type = ?", itemType).
		Order("favourited_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}
