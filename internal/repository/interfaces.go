package repository

import (
	"context"
	"time"

	syncrepo "github.com/mrlokans/lullabies/internal/database/sync"
	"github.com/mrlokans/lullabies/internal/entities"
	"github.com/mrlokans/lullabies/internal/remote"
)

// LullabySource fetches the lullaby family from the content API.
type LullabySource interface {
	FetchLullabies(ctx context.Context) ([]remote.Lullaby, error)
	FetchLullabyTranslations(ctx context.Context) ([]remote.LullabyTranslation, error)
}

// StorySource fetches the story family from the content API.
type StorySource interface {
	FetchStories(ctx context.Context) ([]remote.Story, error)
	FetchStoryNameTranslations(ctx context.Context) ([]remote.StoryNameTranslation, error)
	FetchStoryDescriptionTranslations(ctx context.Context) ([]remote.StoryDescriptionTranslation, error)
	FetchStoryAudioLanguages(ctx context.Context) ([]remote.StoryAudioLanguage, error)
}

// LullabyStore is the lullaby side of the local cache.
type LullabyStore interface {
	Count(ctx context.Context) (int64, error)
	InsertAll(ctx context.Context, lullabies []entities.Lullaby) error
	InsertTranslations(ctx context.Context, translations []entities.LullabyTranslation) error
	GetLocalized(ctx context.Context, lang string) ([]entities.LocalizedLullaby, error)
	GetLocalizedFavourites(ctx context.Context, lang string) ([]entities.LocalizedLullaby, error)
	GetLocalizedDownloaded(ctx context.Context, lang string) ([]entities.LocalizedLullaby, error)
	GetLocalizedByDocumentID(ctx context.Context, documentID, lang string) (*entities.LocalizedLullaby, error)
	ObserveLocalized(ctx context.Context, lang string) <-chan []entities.LocalizedLullaby
	ObserveFavourites(ctx context.Context, lang string) <-chan []entities.LocalizedLullaby
	ObserveDownloaded(ctx context.Context, lang string) <-chan []entities.LocalizedLullaby
}

// StoryStore is the story side of the local cache.
type StoryStore interface {
	Count(ctx context.Context) (int64, error)
	InsertAll(ctx context.Context, stories []entities.Story) error
	InsertNameTranslations(ctx context.Context, rows []entities.StoryNameTranslation) error
	InsertDescriptionTranslations(ctx context.Context, rows []entities.StoryDescriptionTranslation) error
	InsertAudioLanguages(ctx context.Context, rows []entities.StoryAudioLanguage) error
	GetLocalized(ctx context.Context, lang string) ([]entities.LocalizedStory, error)
	GetLocalizedFavourites(ctx context.Context, lang string) ([]entities.LocalizedStory, error)
	GetLocalizedByDocumentID(ctx context.Context, documentID, lang string) (*entities.LocalizedStory, error)
	ObserveLocalized(ctx context.Context, lang string) <-chan []entities.LocalizedStory
	ObserveFavourites(ctx context.Context, lang string) <-chan []entities.LocalizedStory
}

// SyncStateStore records per-family sync progress.
type SyncStateStore interface {
	StartSync(ctx context.Context, syncType entities.SyncType) error
	CompleteSync(ctx context.Context, syncType entities.SyncType, result syncrepo.SyncResult) error
	LastSyncedAt(ctx context.Context, syncType entities.SyncType) (*time.Time, error)
}

// LanguageSignal is the process-wide current language.
type LanguageSignal interface {
	Current() string
	Subscribe(ctx context.Context) <-chan string
}

// Syncer is implemented by each content family's repository.
type Syncer interface {
	Family() entities.SyncType
	Refresh(ctx context.Context) error
	RefreshIfStale(ctx context.Context) (bool, error)
}
