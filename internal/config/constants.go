package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the journal database
	DefaultDatabasePath = "./journal.db"

	// DefaultExportDir is where scheduled exports are written
	DefaultExportDir = "./exports"
)
