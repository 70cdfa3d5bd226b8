package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/lullabies/internal/database/watch"
	"github.com/mrlokans/lullabies/internal/entities"
)

// Database owns the local content cache connection and the tracker that
// feeds live queries.
type Database struct {
	DB      *gorm.DB
	Tracker *watch.Tracker
}

// Options tunes how the database is opened.
type Options struct {
	LogLevel logger.LogLevel
}

// ParseLogLevel maps a configured level name (silent, error, warn, info)
// to a gorm log level. Unknown names fall back to warn.
func ParseLogLevel(name string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func NewDatabase(dbPath string) (*Database, error) {
	return NewDatabaseWithOptions(dbPath, Options{LogLevel: logger.Warn})
}

func NewDatabaseWithOptions(dbPath string, opts Options) (*Database, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(opts.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer; one pooled connection makes concurrent
	// persists queue instead of failing with SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&entities.Lullaby{},
		&entities.LullabyTranslation{},
		&entities.Story{},
		&entities.StoryNameTranslation{},
		&entities.StoryDescriptionTranslation{},
		&entities.StoryAudioLanguage{},
		&entities.FavouriteMetadata{},
		&entities.SyncProgress{},
		&entities.Setting{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	tracker := watch.NewTracker()
	if err := tracker.Register(db); err != nil {
		return nil, fmt.Errorf("failed to register change tracker: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db, Tracker: tracker}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
