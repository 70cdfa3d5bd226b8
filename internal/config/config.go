package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Remote
		Sync
		Language
		Downloads
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path     string
		LogLevel string // silent, error, warn, info
	}
	Remote struct {
		BaseURL  string
		Token    string
		PageSize int
		Timeout  time.Duration
	}
	Sync struct {
		StaleThreshold  time.Duration // Age after which a content family is fetched again
		Enabled         bool          // Run the periodic sync
		Schedule        string        // Cron format: "0 * * * *" = hourly
		ForceOnSchedule bool          // Refresh on every run even when fresh
		OnStartup       bool          // Refresh stale families when the server starts
	}
	Language struct {
		Default string
	}
	Downloads struct {
		Dir     string
		Timeout time.Duration
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

// loadDotEnv loads an optional .env file. Variables already set in the
// environment take precedence.
func loadDotEnv(paths ...string) {
	if len(paths) == 0 {
		_ = godotenv.Load()
		return
	}
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
}

func NewConfig(envFiles ...string) *Config {
	loadDotEnv(envFiles...)

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_log_level", "warn")

	// Content API defaults
	v.SetDefault("content_api_url", "http://localhost:8080")
	v.SetDefault("content_api_token", "")
	v.SetDefault("content_api_page_size", 300)
	v.SetDefault("content_api_timeout", "30s")

	// Sync defaults
	v.SetDefault("sync_stale_threshold", "24h")
	v.SetDefault("sync_enabled", true)
	v.SetDefault("sync_schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("sync_force_on_schedule", false)
	v.SetDefault("sync_on_startup", true)

	v.SetDefault("default_language", DefaultLanguage)
	v.SetDefault("downloads_dir", DefaultDownloadsDir)
	v.SetDefault("download_timeout", "10m")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:     v.GetString("DATABASE_PATH"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		Remote: Remote{
			BaseURL:  v.GetString("CONTENT_API_URL"),
			Token:    v.GetString("CONTENT_API_TOKEN"),
			PageSize: v.GetInt("CONTENT_API_PAGE_SIZE"),
			Timeout:  v.GetDuration("CONTENT_API_TIMEOUT"),
		},
		Sync: Sync{
			StaleThreshold:  v.GetDuration("SYNC_STALE_THRESHOLD"),
			Enabled:         v.GetBool("SYNC_ENABLED"),
			Schedule:        v.GetString("SYNC_SCHEDULE"),
			ForceOnSchedule: v.GetBool("SYNC_FORCE_ON_SCHEDULE"),
			OnStartup:       v.GetBool("SYNC_ON_STARTUP"),
		},
		Language: Language{
			Default: v.GetString("DEFAULT_LANGUAGE"),
		},
		Downloads: Downloads{
			Dir:     v.GetString("DOWNLOADS_DIR"),
			Timeout: v.GetDuration("DOWNLOAD_TIMEOUT"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
