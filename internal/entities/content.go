package entities

import (
	"strings"
	"time"
)

// ItemType identifies which primary table an item id points into.
type ItemType string

const (
	ItemTypeLullaby ItemType = "lullaby"
	ItemTypeStory   ItemType = "story"
)

// Valid reports whether t names a known content family.
func (t ItemType) Valid() bool {
	return t == ItemTypeLullaby || t == ItemTypeStory
}

type Lullaby struct {
	DocumentID     string    `gorm:"primaryKey;size:128" json:"document_id"`
	InternalID     int       `gorm:"index" json:"internal_id"`
	Name           string    `gorm:"size:512" json:"name"` // source language
	AudioPath      string    `gorm:"size:2048" json:"audio_path"`
	LocalAudioPath *string   `gorm:"size:2048" json:"local_audio_path,omitempty"` // set after download
	FileSize       int64     `json:"file_size"`
	ImagePath      string    `gorm:"size:2048" json:"image_path"`
	Duration       string    `gorm:"size:32" json:"duration"`
	IsDownloaded   bool      `gorm:"default:false" json:"is_downloaded"`
	IsFavourite    bool      `gorm:"index;default:false" json:"is_favourite"`
	Popularity     int       `json:"popularity"`
	IsFree         bool      `gorm:"default:false" json:"is_free"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Lullaby) TableName() string {
	return "lullabies"
}

type Story struct {
	DocumentID   string    `gorm:"primaryKey;size:128" json:"document_id"`
	InternalID   int       `gorm:"index" json:"internal_id"`
	Name         string    `gorm:"size:512" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	AudioPath    string    `gorm:"size:2048" json:"audio_path"`
	ImagePath    string    `gorm:"size:2048" json:"image_path"`
	ReadingTime  string    `gorm:"size:64" json:"reading_time"`
	ListenTimeMs int64     `json:"listen_time_ms"`
	Popularity   int       `json:"popularity"`
	IsFavourite  bool      `gorm:"index;default:false" json:"is_favourite"`
	IsFree       bool      `gorm:"default:false" json:"is_free"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Story) TableName() string {
	return "stories"
}

// LullabyTranslation holds the name of a lullaby in one language.
type LullabyTranslation struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	LullabyDocumentID string `gorm:"uniqueIndex:idx_lullaby_translation_lang;size:128" json:"lullaby_document_id"`
	LanguageCode      string `gorm:"uniqueIndex:idx_lullaby_translation_lang;size:8" json:"language_code"`
	Name              string `gorm:"size:512" json:"name"`
}

func (LullabyTranslation) TableName() string {
	return "lullaby_translations"
}

// StoryNameTranslation carries both the translated name and the audio
// recording narrated in that language.
type StoryNameTranslation struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	StoryDocumentID string `gorm:"uniqueIndex:idx_story_name_lang;size:128" json:"story_document_id"`
	LanguageCode    string `gorm:"uniqueIndex:idx_story_name_lang;size:8" json:"language_code"`
	Name            string `gorm:"size:512" json:"name"`
	AudioPath       string `gorm:"size:2048" json:"audio_path"`
}

func (StoryNameTranslation) TableName() string {
	return "story_name_translations"
}

type StoryDescriptionTranslation struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	StoryDocumentID string `gorm:"uniqueIndex:idx_story_description_lang;size:128" json:"story_document_id"`
	LanguageCode    string `gorm:"uniqueIndex:idx_story_description_lang;size:8" json:"language_code"`
	Description     string `gorm:"type:text" json:"description"`
}

func (StoryDescriptionTranslation) TableName() string {
	return "story_description_translations"
}

// StoryAudioLanguage lists the languages a story has narrated audio for.
// LanguageCodes is stored comma-separated.
type StoryAudioLanguage struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	StoryDocumentID string `gorm:"uniqueIndex;size:128" json:"story_document_id"`
	LanguageCodes   string `gorm:"size:256" json:"language_codes"`
}

func (StoryAudioLanguage) TableName() string {
	return "story_audio_languages"
}

// Languages returns the parsed language code list.
func (a StoryAudioLanguage) Languages() []string {
	if a.LanguageCodes == "" {
		return nil
	}
	parts := strings.Split(a.LanguageCodes, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			codes = append(codes, p)
		}
	}
	return codes
}

// FavouriteMetadata records when an item was favourited. A row exists
// exactly while the item's IsFavourite flag is true.
type FavouriteMetadata struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ItemID       string    `gorm:"uniqueIndex:idx_favourite_item;size:128" json:"item_id"`
	ItemType     ItemType  `gorm:"uniqueIndex:idx_favourite_item;size:20" json:"item_type"`
	FavouritedAt time.Time `gorm:"index" json:"favourited_at"`
}

func (FavouriteMetadata) TableName() string {
	return "favourite_metadata"
}
