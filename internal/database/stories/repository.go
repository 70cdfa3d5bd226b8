// Package stories provides database operations for stories and their name,
// description and audio-language translations.
//
// # Interface Implementation
//
//	var _ repository.StoryStore = (*Repository)(nil)
//
// # Usage
//
//	repo := stories.NewRepository(db.DB, db.Tracker)
//	rows, err := repo.GetLocalized(ctx, "de")
package stories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/lullabies/internal/database/watch"
	"github.com/mrlokans/lullabies/internal/entities"
)

const (
	tableStories                 = "stories"
	tableNameTranslations        = "story_name_translations"
	tableDescriptionTranslations = "story_description_translations"
	tableAudioLanguages          = "story_audio_languages"
	tableFavourites              = "favourite_metadata"

	insertBatchSize = 200
)

var remoteColumns = []string{
	"internal_id", "name", "description", "audio_path", "image_path",
	"reading_time", "listen_time_ms", "popularity", "is_free", "updated_at",
}

// Repository handles all story database operations.
type Repository struct {
	db      *gorm.DB
	tracker *watch.Tracker
}

// NewRepository creates a new stories repository.
func NewRepository(db *gorm.DB, tracker *watch.Tracker) *Repository {
	return &Repository{db: db, tracker: tracker}
}

// GetByDocumentID returns the story or nil if it is not cached.
func (r *Repository) GetByDocumentID(ctx context.Context, documentID string) (*entities.Story, error) {
	var story entities.Story
	err := r.db.WithContext(ctx).Where("document_id = ?", documentID).First(&story).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// GetAll returns every cached story in catalog order.
func (r *Repository) GetAll(ctx context.Context) ([]entities.Story, error) {
	var stories []entities.Story
	err := r.db.WithContext(ctx).Order("internal_id ASC, document_id ASC").Find(&stories).Error
	return stories, err
}

// Insert stores a single story, replacing remote-owned columns on conflict.
func (r *Repository) Insert(ctx context.Context, story *entities.Story) error {
	return r.upsert(ctx).Create(story).Error
}

// InsertAll stores stories in bulk, replacing remote-owned columns on conflict.
func (r *Repository) InsertAll(ctx context.Context, stories []entities.Story) error {
	if len(stories) == 0 {
		return nil
	}
	return r.upsert(ctx).CreateInBatches(stories, insertBatchSize).Error
}

func (r *Repository) upsert(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns(remoteColumns),
	})
}

// Update saves every column of the story.
func (r *Repository) Update(ctx context.Context, story *entities.Story) error {
	return r.db.WithContext(ctx).Save(story).Error
}

// Delete removes a story together with its translation rows and favourite
// metadata.
func (r *Repository) Delete(ctx context.Context, documentID string) error {
	return r.tracker.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		for _, model := range []any{
			&entities.StoryNameTranslation{},
			&entities.StoryDescriptionTranslation{},
			&entities.StoryAudioLanguage{},
		} {
			if err := tx.Where("story_document_id = ?", documentID).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("item_id = ? AND item_type = ?", documentID, entities.ItemTypeStory).
			Delete(&entities.FavouriteMetadata{}).Error; err != nil {
			return err
		}
		return tx.Where("document_id = ?", documentID).Delete(&entities.Story{}).Error
	})
}

// DeleteAll removes every story and the story favourite metadata.
func (r *Repository) DeleteAll(ctx context.Context) error {
	return r.tracker.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("item_type = ?", entities.ItemTypeStory).Delete(&entities.FavouriteMetadata{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.Story{}).Error
	})
}

// Count returns the number of cached stories.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Story{}).Count(&count).Error
	return count, err
}

// ObserveAll emits every cached story now and after each change.
func (r *Repository) ObserveAll(ctx context.Context) <-chan []entities.Story {
	return watch.Query(ctx, r.tracker, []string{tableStories}, r.GetAll)
}
