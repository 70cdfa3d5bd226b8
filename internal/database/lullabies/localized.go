package lullabies

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/lullabies/internal/entities"
)

// localized selects lullabies left-joined with the translation for lang.
// An absent or empty translation falls back to the source-language name.
func (r *Repository) localized(ctx context.Context, lang string) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("lullabies AS l").
		Select("l.*, COALESCE(NULLIF(t.name, ''), l.name) AS localized_name").
		Joins("LEFT JOIN lullaby_translations AS t ON t.lullaby_document_id = l.document_id AND t.language_code = ?", lang)
}

// GetLocalized returns every lullaby with its name resolved for lang.
func (r *Repository) GetLocalized(ctx context.Context, lang string) ([]entities.LocalizedLullaby, error) {
	rows := []entities.LocalizedLullaby{}
	err := r.localized(ctx, lang).Order("l.internal_id ASC, l.document_id ASC").Scan(&rows).Error
	return rows, err
}

// GetLocalizedFavourites returns favourite lullabies for lang, most recently
// favourited first.
func (r *Repository) GetLocalizedFavourites(ctx context.Context, lang string) ([]entities.LocalizedLullaby, error) {
	rows := []entities.LocalizedLullaby{}
	err := r.localized(ctx, lang).
		Joins("LEFT JOIN favourite_metadata AS fm ON fm.item_id = l.document_id AND fm.item_type = ?", entities.ItemTypeLullaby).
		Where("l.is_favourite = ?", true).
		Order("fm.favourited_at IS NULL, fm.favourited_at DESC, fm.id DESC").
		Scan(&rows).Error
	return rows, err
}

// GetLocalizedDownloaded returns downloaded lullabies for lang.
func (r *Repository) GetLocalizedDownloaded(ctx context.Context, lang string) ([]entities.LocalizedLullaby, error) {
	rows := []entities.LocalizedLullaby{}
	err := r.localized(ctx, lang).
		Where("l.is_downloaded = ?", true).
		Order("l.internal_id ASC, l.document_id ASC").
		Scan(&rows).Error
	return rows, err
}

// GetLocalizedByDocumentID returns one localized lullaby or nil.
func (r *Repository) GetLocalizedByDocumentID(ctx context.Context, documentID, lang string) (*entities.LocalizedLullaby, error) {
	var row entities.LocalizedLullaby
	result := r.localized(ctx, lang).Where("l.document_id = ?", documentID).Limit(1).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

// ObserveLocalized emits GetLocalized(lang) now and after every change to
// lullabies or their translations.
func (r *Repository) ObserveLocalized(ctx context.Context, lang string) <-chan []entities.LocalizedLullaby {
	return watchLocalized(ctx, r, []string{tableLullabies, tableTranslations}, lang, r.GetLocalized)
}

// ObserveFavourites emits GetLocalizedFavourites(lang) live.
func (r *Repository) ObserveFavourites(ctx context.Context, lang string) <-chan []entities.LocalizedLullaby {
	return watchLocalized(ctx, r, []string{tableLullabies, tableTranslations, tableFavourites}, lang, r.GetLocalizedFavourites)
}

// ObserveDownloaded emits GetLocalizedDownloaded(lang) live.
func (r *Repository) ObserveDownloaded(ctx context.Context, lang string) <-chan []entities.LocalizedLullaby {
	return watchLocalized(ctx, r, []string{tableLullabies, tableTranslations}, lang, r.GetLocalizedDownloaded)
}
