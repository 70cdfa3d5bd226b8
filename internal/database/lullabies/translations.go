package lullabies

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/lullabies/internal/entities"
)

// InsertTranslations stores name translations, replacing the name of an
// existing (lullaby, language) pair.
func (r *Repository) InsertTranslations(ctx context.Context, translations []entities.LullabyTranslation) error {
	if len(translations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lullaby_document_id"}, {Name: "language_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).CreateInBatches(translations, insertBatchSize).Error
}

// GetTranslations returns all translations of one lullaby.
func (r *Repository) GetTranslations(ctx context.Context, documentID string) ([]entities.LullabyTranslation, error) {
	var translations []entities.LullabyTranslation
	err := r.db.WithContext(ctx).
		Where("lullaby_document_id = ?", documentID).
		Order("language_code ASC").
		Find(&translations).Error
	return translations, err
}

// CountTranslations returns the number of stored translations.
func (r *Repository) CountTranslations(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.LullabyTranslation{}).Count(&count).Error
	return count, err
}

// DeleteAllTranslations removes every lullaby translation.
func (r *Repository) DeleteAllTranslations(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.LullabyTranslation{}).Error
}
