package http

import (
	"github.com/mrlokans/lullabies/internal/domain"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
// Optional dependencies left nil disable their routes.
type RouterConfig struct {
	// Core dependencies
	Database  Pinger
	Lullabies ContentSource[domain.Lullaby]
	Stories   ContentSource[domain.Story]

	// Offline listing
	Downloads DownloadedSource[domain.Lullaby]

	// Favourites management
	FavouritesStore FavouritesStore

	// App language
	Language LanguageStore

	// Background tasks
	TaskQueue    TaskQueue
	SyncStatus   SyncStatusReader
	SyncSchedule SyncSchedule

	// Application info
	Version string
}
