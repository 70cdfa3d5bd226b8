package stories

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/lullabies/internal/database/watch"
	"github.com/mrlokans/lullabies/internal/entities"
)

var localizedTables = []string{
	tableStories, tableNameTranslations, tableDescriptionTranslations, tableAudioLanguages,
}

// localized resolves name, description and audio for lang in one pass. Each
// field falls back to the source-language column independently.
func (r *Repository) localized(ctx context.Context, lang string) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("stories AS s").
		Select(`s.*,
			COALESCE(NULLIF(n.name, ''), s.name) AS localized_name,
			COALESCE(NULLIF(d.description, ''), s.description) AS localized_description,
			COALESCE(NULLIF(n.audio_path, ''), s.audio_path) AS localized_audio_path,
			COALESCE(a.language_codes, '') AS audio_languages`).
		Joins("LEFT JOIN story_name_translations AS n ON n.story_document_id = s.document_id AND n.language_code = ?", lang).
		Joins("LEFT JOIN story_description_translations AS d ON d.story_document_id = s.document_id AND d.language_code = ?", lang).
		Joins("LEFT JOIN story_audio_languages AS a ON a.story_document_id = s.document_id")
}

// GetLocalized returns every story fully localized for lang.
func (r *Repository) GetLocalized(ctx context.Context, lang string) ([]entities.LocalizedStory, error) {
	rows := []entities.LocalizedStory{}
	err := r.localized(ctx, lang).Order("s.internal_id ASC, s.document_id ASC").Scan(&rows).Error
	return rows, err
}

// GetLocalizedFavourites returns favourite stories for lang, most recently
// favourited first.
func (r *Repository) GetLocalizedFavourites(ctx context.Context, lang string) ([]entities.LocalizedStory, error) {
	rows := []entities.LocalizedStory{}
	err := r.localized(ctx, lang).
		Joins("LEFT JOIN favourite_metadata AS fm ON fm.item_id = s.document_id AND fm.item_type = ?", entities.ItemTypeStory).
		Where("s.is_favourite = ?", true).
		Order("fm.favourited_at IS NULL, fm.favourited_at DESC, fm.id DESC").
		Scan(&rows).Error
	return rows, err
}

// GetLocalizedByDocumentID returns one localized story or nil.
func (r *Repository) GetLocalizedByDocumentID(ctx context.Context, documentID, lang string) (*entities.LocalizedStory, error) {
	var row entities.LocalizedStory
	result := r.localized(ctx, lang).Where("s.document_id = ?", documentID).Limit(1).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

// ObserveLocalized emits GetLocalized(lang) now and after every change to a
// story or translation table.
func (r *Repository) ObserveLocalized(ctx context.Context, lang string) <-chan []entities.LocalizedStory {
	return watch.Query(ctx, r.tracker, localizedTables, func(ctx context.Context) ([]entities.LocalizedStory, error) {
		return r.GetLocalized(ctx, lang)
	})
}

// ObserveFavourites emits GetLocalizedFavourites(lang) live.
func (r *Repository) ObserveFavourites(ctx context.Context, lang string) <-chan []entities.LocalizedStory {
	tables := append([]string{tableFavourites}, localizedTables...)
	return watch.Query(ctx, r.tracker, tables, func(ctx context.Context) ([]entities.LocalizedStory, error) {
		return r.GetLocalizedFavourites(ctx, lang)
	})
}
