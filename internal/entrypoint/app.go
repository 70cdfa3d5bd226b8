package entrypoint

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/lullabies/internal/config"
	"github.com/mrlokans/lullabies/internal/database"
	"github.com/mrlokans/lullabies/internal/database/favourites"
	"github.com/mrlokans/lullabies/internal/database/lullabies"
	"github.com/mrlokans/lullabies/internal/database/settings"
	"github.com/mrlokans/lullabies/internal/database/stories"
	syncrepo "github.com/mrlokans/lullabies/internal/database/sync"
	"github.com/mrlokans/lullabies/internal/downloads"
	"github.com/mrlokans/lullabies/internal/language"
	"github.com/mrlokans/lullabies/internal/remote"
	"github.com/mrlokans/lullabies/internal/repository"
)

// App holds the wired content core shared by the server and the CLI.
type App struct {
	DB           *database.Database
	LullabyStore *lullabies.Repository
	StoryStore   *stories.Repository
	Favourites   *favourites.Repository
	SyncState    *syncrepo.Repository
	Language     *language.Signal
	Remote       *remote.Client
	Lullabies    *repository.LullabyRepository
	Stories      *repository.StoryRepository
	Downloader   *downloads.HTTPDownloader
}

// NewApp opens the cache and wires repositories, the language signal and the
// sync coordinators. Close the returned App when done.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.NewDatabaseWithOptions(cfg.Database.Path, database.Options{
		LogLevel: database.ParseLogLevel(cfg.Database.LogLevel),
	})
	if err != nil {
		return nil, err
	}

	app := &App{
		DB:           db,
		LullabyStore: lullabies.NewRepository(db.DB, db.Tracker),
		StoryStore:   stories.NewRepository(db.DB, db.Tracker),
		Favourites:   favourites.NewRepository(db.DB, db.Tracker),
		SyncState:    syncrepo.NewRepository(db.DB),
	}

	app.Language, err = language.NewSignal(ctx, settings.NewRepository(db.DB), cfg.Language.Default)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init language: %w", err)
	}
	log.Printf("App language: %s", app.Language.Current())

	if cfg.Remote.Token == "" {
		log.Printf("WARNING: Content API token is not set. Set 'CONTENT_API_TOKEN' if the API requires authentication.")
	}
	app.Remote = remote.NewClient(remote.Config{
		BaseURL:  cfg.Remote.BaseURL,
		Token:    cfg.Remote.Token,
		PageSize: cfg.Remote.PageSize,
		Timeout:  cfg.Remote.Timeout,
	})

	policy := repository.NewStalenessPolicy(cfg.Sync.StaleThreshold)
	app.Lullabies = repository.NewLullabyRepository(app.Remote, app.LullabyStore, app.SyncState, app.Language, policy)
	app.Stories = repository.NewStoryRepository(app.Remote, app.StoryStore, app.SyncState, app.Language, policy)

	app.Downloader, err = downloads.NewHTTPDownloader(cfg.Downloads.Dir, cfg.Downloads.Timeout)
	if err != nil {
		db.Close()
		return nil, err
	}

	return app, nil
}

// Syncers returns every content family coordinator.
func (a *App) Syncers() []repository.Syncer {
	return []repository.Syncer{a.Lullabies, a.Stories}
}

func (a *App) Close() error {
	return a.DB.Close()
}
