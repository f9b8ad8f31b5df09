// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help code agents understand
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - EntryStore: Journal reads and writes for the API (internal/http/stores.go)
//   - EntryReader: Read-only journal access for agents (internal/mcp/server.go)
//   - EntrySource: Snapshot source for statistics (internal/analytics/engine.go)
//   - UserRepository: Local accounts (internal/auth/service.go)
//
// ## Export Interfaces
//
//   - DocumentExporter: Renders entries into one document (internal/exporters/generic.go)
//   - JournalExporter: Exports the whole journal to a path (internal/tasks/export_journal.go)
//
// ## Audit Interfaces
//
//   - EntryEventLogger, ExportEventLogger: Write audit events (internal/http/stores.go)
//   - AuditEventCleaner: Retention sweep (internal/tasks/cleanup_audit.go)
//   - EventLogger: Login and setup events (internal/auth/handlers.go)
//
// ## Background Work Interfaces
//
//   - TaskQueue: Enqueue and inspect tasks (internal/http/stores.go)
//   - TaskEnqueuer: Scheduler hand-off to the queue (internal/scheduler/export.go)
//   - ScheduleInfo: Scheduler state for the API (internal/http/export.go)
//
// # Adding a New Export Format
//
// To render the journal in another format (e.g., JSON lines):
//
//  1. Implement DocumentExporter in internal/exporters/
//
//     type JSONLinesExporter struct{}
//
//     func (e *JSONLinesExporter) Export(entries []entities.Entry, path string) (ExportResult, error)
//
//     var _ DocumentExporter = (*JSONLinesExporter)(nil)
//
//  2. Pair it with the journal in entrypoint.go
//
//     exporters.NewDatabaseExporter(repo, exporters.NewJSONLinesExporter())
//
// # Adding a New Background Task
//
//  1. Define the task and its queue config in internal/tasks/
//
//     type RebuildStatsTask struct{}
//
//     func (t RebuildStatsTask) Config() backlite.QueueConfig
//
//  2. Register the queue on the client in entrypoint.go
//
//  3. Expose the task type in internal/http/tasks.go
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Add the model to the AutoMigrate list in internal/database/database.go
//
//  4. Add compile-time check:
//
//     var _ SomeStore = (*Repository)(nil)
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
