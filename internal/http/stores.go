package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/lullabies/internal/entities"
)

// ContentSource is the read side of a content family, such as lullabies or
// stories, as exposed by the sync coordinator.
type ContentSource[T any] interface {
	Sync(ctx context.Context) <-chan []T
	ObserveFavourites(ctx context.Context) <-chan []T
	List(ctx context.Context) ([]T, error)
	Favourites(ctx context.Context) ([]T, error)
	Get(ctx context.Context, documentID string) (*T, error)
}

// DownloadedSource lists items whose audio is stored locally.
type DownloadedSource[T any] interface {
	Downloaded(ctx context.Context) ([]T, error)
	ObserveDownloaded(ctx context.Context) <-chan []T
}

// FavouritesStore defines database operations for favourites management.
type FavouritesStore interface {
	Toggle(ctx context.Context, itemID string, itemType entities.ItemType) (bool, error)
	SetFavourite(ctx context.Context, itemID string, itemType entities.ItemType, isFavourite bool) error
	GetFavouriteCount(ctx context.Context, itemType entities.ItemType) (int64, error)
}

// LanguageStore reads and changes the app language.
type LanguageStore interface {
	Current() string
	Set(ctx context.Context, code string) (string, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// SyncStatusReader exposes sync bookkeeping per content family.
type SyncStatusReader interface {
	GetSyncProgress(ctx context.Context, syncType entities.SyncType) (*entities.SyncProgress, error)
}

// SyncSchedule reports when the periodic sync runs next.
type SyncSchedule interface {
	GetNextRunTime() *time.Time
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping() error
}
