package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the content database
	DefaultDatabasePath = "./lullabies.db"

	// DefaultDownloadsDir is where downloaded audio is stored
	DefaultDownloadsDir = "./downloads"

	// DefaultLanguage is used until the user picks an app language
	DefaultLanguage = "en"
)
