package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/lullabies/internal/config"
	http_controllers "github.com/mrlokans/lullabies/internal/http"
	"github.com/mrlokans/lullabies/internal/scheduler"
	"github.com/mrlokans/lullabies/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	// Request contexts derive from baseCtx so open event streams can be ended
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()

	srv := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:     router,
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so no task writes after the database closes
	if onShutdown != nil {
		onShutdown(ctx)
	}

	cancelRequests()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Lullabies v%s", version)

	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	app, err := NewApp(appCtx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var syncScheduler *scheduler.ContentSyncScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewSyncContentQueue(app.Syncers()...),
			tasks.NewDownloadLullabyQueue(app.LullabyStore, app.Downloader, app.LullabyStore),
		)
		go taskClient.Start(appCtx)

		syncScheduler = scheduler.NewContentSyncScheduler(taskClient, scheduler.Config{
			Enabled:  cfg.Sync.Enabled,
			Schedule: cfg.Sync.Schedule,
			Force:    cfg.Sync.ForceOnSchedule,
		})
		if err := syncScheduler.Start(appCtx); err != nil {
			log.Printf("WARNING: Failed to start content sync scheduler: %v", err)
		}
	} else if cfg.Sync.Enabled {
		log.Printf("WARNING: Scheduled sync needs the task queue. Set 'TASKS_ENABLED=true' to enable it.")
	}

	if cfg.Sync.OnStartup {
		startupSync(appCtx, app, taskClient)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:        app.DB,
		Lullabies:       app.Lullabies,
		Stories:         app.Stories,
		Downloads:       app.Lullabies,
		FavouritesStore: app.Favourites,
		Language:        app.Language,
		SyncStatus:      app.SyncState,
		Version:         version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
		routerCfg.SyncSchedule = syncScheduler
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if syncScheduler != nil {
			syncScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		cancelApp()
	}

	Serve(router, cfg, onShutdown)
}

// startupSync refreshes stale families once when the server starts, through
// the queue when there is one.
func startupSync(ctx context.Context, app *App, taskClient *tasks.Client) {
	if taskClient != nil {
		id, err := taskClient.Enqueue(ctx, tasks.SyncContentTask{})
		if err != nil {
			log.Printf("WARNING: Failed to enqueue startup sync: %v", err)
			return
		}
		log.Printf("Startup sync enqueued as task %s", id)
		return
	}

	go func() {
		if err := tasks.RunSync(ctx, "", false, app.Syncers()...); err != nil {
			log.Printf("WARNING: Startup sync failed: %v", err)
		}
	}()
}
