package remote

import "encoding/json"

// Collection names served by the content API.
const (
	CollectionLullabies                    = "lullabies"
	CollectionLullabyTranslations          = "lullaby_translations"
	CollectionStories                      = "stories"
	CollectionStoryNameTranslations        = "story_name_translations"
	CollectionStoryDescriptionTranslations = "story_description_translations"
	CollectionStoryAudioLanguages          = "story_audio_languages"
)

// Document is one record of a collection.
type Document struct {
	ID     string          `json:"id"`
	Fields json.RawMessage `json:"fields"`
}

// ListResponse is a page of documents.
type ListResponse struct {
	Documents     []Document `json:"documents"`
	NextPageToken string     `json:"nextPageToken"`
}

type documentIDSetter interface {
	setDocumentID(id string)
}

// Decode unmarshals the document fields into v. Primary records also get
// the document id.
func (d Document) Decode(v any) error {
	if len(d.Fields) > 0 {
		if err := json.Unmarshal(d.Fields, v); err != nil {
			return err
		}
	}
	if s, ok := v.(documentIDSetter); ok {
		s.setDocumentID(d.ID)
	}
	return nil
}

// Lullaby is a catalog lullaby. ID is the internal id translations refer to.
type Lullaby struct {
	DocumentID string `json:"-"`
	ID         int    `json:"id"`
	Name       string `json:"name"`
	AudioPath  string `json:"audio_path"`
	FileSize   int64  `json:"file_size"`
	ImagePath  string `json:"image_path"`
	Duration   string `json:"duration"`
	Popularity int    `json:"popularity"`
	IsFree     bool   `json:"is_free"`
}

func (l *Lullaby) setDocumentID(id string) { l.DocumentID = id }

type LullabyTranslation struct {
	LullabyID    int    `json:"lullaby_id"`
	LanguageCode string `json:"language_code"`
	Name         string `json:"name"`
}

type Story struct {
	DocumentID   string `json:"-"`
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	AudioPath    string `json:"audio_path"`
	ImagePath    string `json:"image_path"`
	ReadingTime  string `json:"reading_time"`
	ListenTimeMs int64  `json:"listen_time_ms"`
	Popularity   int    `json:"popularity"`
	IsFree       bool   `json:"is_free"`
}

func (s *Story) setDocumentID(id string) { s.DocumentID = id }

// StoryNameTranslation also carries the audio narrated in that language.
type StoryNameTranslation struct {
	StoryID      int    `json:"story_id"`
	LanguageCode string `json:"language_code"`
	Name         string `json:"name"`
	AudioPath    string `json:"audio_path"`
}

type StoryDescriptionTranslation struct {
	StoryID      int    `json:"story_id"`
	LanguageCode string `json:"language_code"`
	Description  string `json:"description"`
}

type StoryAudioLanguage struct {
	StoryID       int      `json:"story_id"`
	LanguageCodes []string `json:"language_codes"`
}
