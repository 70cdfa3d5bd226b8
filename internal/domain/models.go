// Package domain holds the presentation models produced by the read path.
// Every localizable field is already resolved for the active language; no
// translation rows or language codes leave this layer.
package domain

import "github.com/mrlokans/lullabies/internal/entities"

type Lullaby struct {
	DocumentID     string `json:"document_id"`
	Name           string `json:"name"`
	AudioPath      string `json:"audio_path"`
	LocalAudioPath string `json:"local_audio_path,omitempty"`
	FileSize       int64  `json:"file_size"`
	ImagePath      string `json:"image_path"`
	Duration       string `json:"duration"`
	IsDownloaded   bool   `json:"is_downloaded"`
	IsFavourite    bool   `json:"is_favourite"`
	Popularity     int    `json:"popularity"`
	IsFree         bool   `json:"is_free"`
}

type Story struct {
	DocumentID     string   `json:"document_id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	AudioPath      string   `json:"audio_path"`
	ImagePath      string   `json:"image_path"`
	ReadingTime    string   `json:"reading_time"`
	ListenTimeMs   int64    `json:"listen_time_ms"`
	Popularity     int      `json:"popularity"`
	IsFavourite    bool     `json:"is_favourite"`
	IsFree         bool     `json:"is_free"`
	AudioLanguages []string `json:"audio_languages"`
}

// LullabyFromRow maps a localized cache row, preferring the localized name.
func LullabyFromRow(row entities.LocalizedLullaby) Lullaby {
	l := Lullaby{
		DocumentID:   row.DocumentID,
		Name:         firstNonEmpty(row.LocalizedName, row.Name),
		AudioPath:    row.AudioPath,
		FileSize:     row.FileSize,
		ImagePath:    row.ImagePath,
		Duration:     row.Duration,
		IsDownloaded: row.IsDownloaded,
		IsFavourite:  row.IsFavourite,
		Popularity:   row.Popularity,
		IsFree:       row.IsFree,
	}
	if row.LocalAudioPath != nil {
		l.LocalAudioPath = *row.LocalAudioPath
	}
	return l
}

// StoryFromRow maps a localized cache row, preferring each localized field.
func StoryFromRow(row entities.LocalizedStory) Story {
	return Story{
		DocumentID:     row.DocumentID,
		Name:           firstNonEmpty(row.LocalizedName, row.Name),
		Description:    firstNonEmpty(row.LocalizedDescription, row.Description),
		AudioPath:      firstNonEmpty(row.LocalizedAudioPath, row.AudioPath),
		ImagePath:      row.ImagePath,
		ReadingTime:    row.ReadingTime,
		ListenTimeMs:   row.ListenTimeMs,
		Popularity:     row.Popularity,
		IsFavourite:    row.IsFavourite,
		IsFree:         row.IsFree,
		AudioLanguages: splitCodes(row.AudioLanguages),
	}
}

func Lullabies(rows []entities.LocalizedLullaby) []Lullaby {
	out := make([]Lullaby, len(rows))
	for i, row := range rows {
		out[i] = LullabyFromRow(row)
	}
	return out
}

func Stories(rows []entities.LocalizedStory) []Story {
	out := make([]Story, len(rows))
	for i, row := range rows {
		out[i] = StoryFromRow(row)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitCodes(csv string) []string {
	return entities.StoryAudioLanguage{LanguageCodes: csv}.Languages()
}
