package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/lullabies/internal/database"
	"github.com/mrlokans/lullabies/internal/database/favourites"
	"github.com/mrlokans/lullabies/internal/database/lullabies"
	"github.com/mrlokans/lullabies/internal/database/settings"
	"github.com/mrlokans/lullabies/internal/database/stories"
	syncrepo "github.com/mrlokans/lullabies/internal/database/sync"
	"github.com/mrlokans/lullabies/internal/domain"
	"github.com/mrlokans/lullabies/internal/downloads"
	"github.com/mrlokans/lullabies/internal/http"
	"github.com/mrlokans/lullabies/internal/language"
	"github.com/mrlokans/lullabies/internal/remote"
	"github.com/mrlokans/lullabies/internal/repository"
	"github.com/mrlokans/lullabies/internal/scheduler"
	"github.com/mrlokans/lullabies/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Local cache stores
var _ repository.LullabyStore = (*lullabies.Repository)(nil)
var _ repository.StoryStore = (*stories.Repository)(nil)
var _ repository.SyncStateStore = (*syncrepo.Repository)(nil)
var _ language.SettingsStore = (*settings.Repository)(nil)

// FavouritesStore implementations
var _ http.FavouritesStore = (*favourites.Repository)(nil)

// Download bookkeeping
var _ downloads.DownloadMarker = (*lullabies.Repository)(nil)
var _ tasks.LullabyLookup = (*lullabies.Repository)(nil)

// =============================================================================
// External Services
// =============================================================================

// Content API
var _ repository.LullabySource = (*remote.Client)(nil)
var _ repository.StorySource = (*remote.Client)(nil)

// Audio transfers
var _ tasks.Downloader = (*downloads.HTTPDownloader)(nil)

// =============================================================================
// Read Path
// =============================================================================

var _ repository.LanguageSignal = (*language.Signal)(nil)
var _ http.LanguageStore = (*language.Signal)(nil)

var _ http.ContentSource[domain.Lullaby] = (*repository.LullabyRepository)(nil)
var _ http.ContentSource[domain.Story] = (*repository.StoryRepository)(nil)
var _ http.DownloadedSource[domain.Lullaby] = (*repository.LullabyRepository)(nil)

var _ repository.Syncer = (*repository.LullabyRepository)(nil)
var _ repository.Syncer = (*repository.StoryRepository)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ http.SyncStatusReader = (*syncrepo.Repository)(nil)
var _ http.Pinger = (*database.Database)(nil)
var _ http.SyncSchedule = (*scheduler.ContentSyncScheduler)(nil)
