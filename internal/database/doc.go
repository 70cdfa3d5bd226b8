// Package database provides the local content cache.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, change tracker
//	├── watch/           # Live queries driven by gorm write callbacks
//	├── lullabies/       # Lullabies, name translations, localized views
//	├── stories/         # Stories, name/description/audio translations, localized views
//	├── favourites/      # Favourite toggling and ordering metadata
//	├── sync/            # Per-family sync progress and last-synced timestamps
//	└── settings/        # Key/value application settings
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./lullabies.db")
//
//	lullabyRepo := lullabies.NewRepository(db.DB, db.Tracker)
//	favouritesRepo := favourites.NewRepository(db.DB, db.Tracker)
//
//	rows := lullabyRepo.ObserveLocalized(ctx, "fr")
//	isFavourite, err := favouritesRepo.Toggle(ctx, "doc-1", entities.ItemTypeLullaby)
//
// # Reads and writes
//
// Point reads return (nil, nil) when a row does not exist. Writes return the
// gorm error. Every committed write wakes the live queries that read from the
// written table, so Observe* channels re-emit without being re-issued.
package database
