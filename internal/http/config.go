package http

import (
	"github.com/mrlokans/journal/internal/auth"
	"github.com/mrlokans/journal/internal/config"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Entries  EntryStore
	Stats    StatsProvider
	Exporter JournalExporter
	Health   Pinger

	// Audit trail (optional). Usually a single *audit.Service.
	EntryEvents  EntryEventLogger
	ExportEvents ExportEventLogger
	AuditEvents  AuditReader

	// Task queue (optional); exports run inline without it
	TaskQueue TaskQueue

	// Export settings
	ExportDir      string
	ExportSchedule ScheduleInfo

	// Authentication (optional, AuthModeNone when unset)
	AuthConfig     config.Auth
	AuthController *auth.AuthController
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte

	// Application info
	Version string
}
