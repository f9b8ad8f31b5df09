package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/journal/internal/analytics"
	"github.com/mrlokans/journal/internal/audit"
	"github.com/mrlokans/journal/internal/auth"
	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/database/users"
	"github.com/mrlokans/journal/internal/exporters"
	"github.com/mrlokans/journal/internal/http"
	"github.com/mrlokans/journal/internal/journal"
	"github.com/mrlokans/journal/internal/mcp"
	"github.com/mrlokans/journal/internal/scheduler"
	"github.com/mrlokans/journal/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// EntryStore implementations
var _ http.EntryStore = (*journal.Repository)(nil)
var _ mcp.EntryReader = (*journal.Repository)(nil)
var _ analytics.EntrySource = (*journal.Repository)(nil)
var _ exporters.EntryReader = (*journal.Repository)(nil)

// UserRepository implementations
var _ auth.UserRepository = (*users.Repository)(nil)

// Health checks
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Analytics and Export
// =============================================================================

var _ http.StatsProvider = (*analytics.Engine)(nil)
var _ mcp.StatsProvider = (*analytics.Engine)(nil)

var _ exporters.DocumentExporter = (*exporters.MarkdownExporter)(nil)
var _ http.JournalExporter = (*exporters.DatabaseExporter)(nil)
var _ tasks.JournalExporter = (*exporters.DatabaseExporter)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ http.EntryEventLogger = (*audit.Service)(nil)
var _ http.ExportEventLogger = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ tasks.ExportEventLogger = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ auth.EventLogger = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.TaskEnqueuer = (*tasks.Client)(nil)
var _ http.ScheduleInfo = (*scheduler.ExportScheduler)(nil)
