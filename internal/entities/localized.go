package entities

// LocalizedLullaby is a lullaby row joined with its translation for one
// language. Name already falls back to the source-language name.
type LocalizedLullaby struct {
	Lullaby
	LocalizedName string `gorm:"column:localized_name"`
}

// LocalizedStory is a story row joined with name, description and audio
// translations for one language. Each localized field falls back on its own.
type LocalizedStory struct {
	Story
	LocalizedName        string `gorm:"column:localized_name"`
	LocalizedDescription string `gorm:"column:localized_description"`
	LocalizedAudioPath   string `gorm:"column:localized_audio_path"`
	AudioLanguages       string `gorm:"column:audio_languages"`
}
