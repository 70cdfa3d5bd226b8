package stories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/lullabies/internal/entities"
)

// InsertNameTranslations stores name + audio translations.
func (r *Repository) InsertNameTranslations(ctx context.Context, rows []entities.StoryNameTranslation) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "story_document_id"}, {Name: "language_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "audio_path"}),
	}).CreateInBatches(rows, insertBatchSize).Error
}

// InsertDescriptionTranslations stores description translations.
func (r *Repository) InsertDescriptionTranslations(ctx context.Context, rows []entities.StoryDescriptionTranslation) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "story_document_id"}, {Name: "language_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"description"}),
	}).CreateInBatches(rows, insertBatchSize).Error
}

// InsertAudioLanguages stores the narrated-language list of each story.
func (r *Repository) InsertAudioLanguages(ctx context.Context, rows []entities.StoryAudioLanguage) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "story_document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"language_codes"}),
	}).CreateInBatches(rows, insertBatchSize).Error
}

// GetNameTranslations returns all name translations of one story.
func (r *Repository) GetNameTranslations(ctx context.Context, documentID string) ([]entities.StoryNameTranslation, error) {
	var rows []entities.StoryNameTranslation
	err := r.db.WithContext(ctx).Where("story_document_id = ?", documentID).Order("language_code ASC").Find(&rows).Error
	return rows, err
}

// GetDescriptionTranslations returns all description translations of one story.
func (r *Repository) GetDescriptionTranslations(ctx context.Context, documentID string) ([]entities.StoryDescriptionTranslation, error) {
	var rows []entities.StoryDescriptionTranslation
	err := r.db.WithContext(ctx).Where("story_document_id = ?", documentID).Order("language_code ASC").Find(&rows).Error
	return rows, err
}

// GetAudioLanguages returns the narrated languages of one story or nil.
func (r *Repository) GetAudioLanguages(ctx context.Context, documentID string) (*entities.StoryAudioLanguage, error) {
	var row entities.StoryAudioLanguage
	err := r.db.WithContext(ctx).Where("story_document_id = ?", documentID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// TranslationCounts reports how many rows each translation table holds.
type TranslationCounts struct {
	Names          int64
	Descriptions   int64
	AudioLanguages int64
}

// CountTranslations returns row counts of every story translation table.
func (r *Repository) CountTranslations(ctx context.Context) (TranslationCounts, error) {
	var counts TranslationCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&entities.StoryNameTranslation{}).Count(&counts.Names).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&entities.StoryDescriptionTranslation{}).Count(&counts.Descriptions).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&entities.StoryAudioLanguage{}).Count(&counts.AudioLanguages).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

// DeleteAllTranslations removes every story translation row.
func (r *Repository) DeleteAllTranslations(ctx context.Context) error {
	return r.tracker.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		tx = tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{
			&entities.StoryNameTranslation{},
			&entities.StoryDescriptionTranslation{},
			&entities.StoryAudioLanguage{},
		} {
			if err := tx.Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
