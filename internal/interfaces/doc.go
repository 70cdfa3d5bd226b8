// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - LullabyStore, StoryStore: Local cache with localized live views (internal/repository/interfaces.go)
//   - SyncStateStore: Per-family sync bookkeeping (internal/repository/interfaces.go)
//   - SettingsStore: Persisted app language (internal/language/signal.go)
//   - FavouritesStore: Favourite flag plus metadata (internal/http/stores.go)
//   - DownloadMarker: Records finished audio downloads (internal/downloads/events.go)
//
// ## External Service Interfaces
//
//   - LullabySource, StorySource: Content API collections (internal/repository/interfaces.go)
//   - Downloader: Audio file transfers (internal/tasks/download_lullaby.go)
//
// ## Read Path Interfaces
//
//   - LanguageSignal: Current language broadcast (internal/repository/interfaces.go)
//   - ContentSource: Localized lists and streams for HTTP (internal/http/stores.go)
//   - Syncer: Staleness-aware refresh of one content family (internal/repository/interfaces.go)
//
// # Adding a New Content Family
//
// To add a family (e.g., white-noise tracks):
//
//  1. Add entities and a cache sub-package under internal/database/ with
//     localized queries and Observe* methods built on watch.Query
//
//  2. Add remote models and Fetch* methods in internal/remote/
//
//  3. Add a coordinator in internal/repository/ that holds a familySyncer
//     and implements Syncer
//
//     var _ Syncer = (*NoiseRepository)(nil)
//
//  4. Pass it to the sync queue and register routes in internal/http/router.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
