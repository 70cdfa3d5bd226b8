package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/lullabies/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())

	health := NewHealthController(cfg.Database, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	var favouritesController *FavouritesController
	if cfg.FavouritesStore != nil {
		favouritesController = NewFavouritesController(cfg.FavouritesStore)
		api.GET("/favourites/count", favouritesController.GetFavouriteCount)
	}

	var tasksController *TasksController
	if cfg.TaskQueue != nil {
		tasksController = NewTasksController(cfg.TaskQueue, cfg.SyncStatus, cfg.SyncSchedule)
		api.POST("/sync", tasksController.Sync)
		api.GET("/sync/status", tasksController.SyncStatus)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	// Lullaby endpoints
	if cfg.Lullabies != nil {
		lullabies := api.Group("/lullabies")
		if cfg.Downloads != nil {
			downloaded := NewDownloadedController("downloaded lullabies", cfg.Downloads)
			lullabies.GET("/downloaded", downloaded.List)
			lullabies.GET("/downloaded/stream", downloaded.Stream)
		}
		registerContentRoutes(lullabies, NewContentController("lullaby", cfg.Lullabies))
		if favouritesController != nil {
			registerFavouriteRoutes(lullabies, favouritesController, entities.ItemTypeLullaby)
		}
		if tasksController != nil {
			lullabies.POST("/:documentId/download", tasksController.DownloadLullaby)
		}
	}

	// Story endpoints
	if cfg.Stories != nil {
		stories := api.Group("/stories")
		registerContentRoutes(stories, NewContentController("story", cfg.Stories))
		if favouritesController != nil {
			registerFavouriteRoutes(stories, favouritesController, entities.ItemTypeStory)
		}
	}

	// Language endpoints
	if cfg.Language != nil {
		languageController := NewLanguageController(cfg.Language)
		api.GET("/language", languageController.GetLanguage)
		api.PUT("/language", languageController.SetLanguage)
	}

	return router
}

func registerContentRoutes[T any](group *gin.RouterGroup, cc *ContentController[T]) {
	group.GET("", cc.List)
	group.GET("/stream", cc.Stream)
	group.GET("/favourites", cc.ListFavourites)
	group.GET("/favourites/stream", cc.StreamFavourites)
	group.GET("/:documentId", cc.Get)
}

func registerFavouriteRoutes(group *gin.RouterGroup, fc *FavouritesController, itemType entities.ItemType) {
	group.POST("/:documentId/favourite", fc.Toggle(itemType))
	group.PUT("/:documentId/favourite", fc.Set(itemType))
}
