package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/journal/internal/analytics"
	"github.com/mrlokans/journal/internal/entities"
	"github.com/mrlokans/journal/internal/exporters"
)

// This file consolidates the narrow interfaces HTTP controllers depend on.
// Each one is satisfied by a concrete type from another package, see
// internal/interfaces for the compile-time checks.

// EntryStore is the journal repository surface used by EntriesController.
type EntryStore interface {
	SaveEntry(entry *entities.Entry) error
	DeleteEntry(date entities.Date) error
	GetEntryByDate(date entities.Date) (*entities.Entry, error)
	GetAllEntries() ([]entities.Entry, error)
	SearchEntries(term string) ([]entities.Entry, error)
	FilterByMood(kind entities.MoodKind) ([]entities.Entry, error)
	FilterByTag(name string) ([]entities.Entry, error)
	GetEntriesBetween(from, to entities.Date) ([]entities.Entry, error)
}

// EntryEventLogger records entry writes in the audit trail.
type EntryEventLogger interface {
	LogSave(userID uint, date entities.Date, entryID uint, err error)
	LogDelete(userID uint, date entities.Date, existed bool)
}

// StatsProvider computes the dashboard summary.
type StatsProvider interface {
	Summary(tagLimit int) analytics.Summary
}

// JournalExporter writes the whole journal to one document.
type JournalExporter interface {
	ExportAll(path string) (exporters.ExportResult, error)
}

// ExportEventLogger records export runs in the audit trail.
type ExportEventLogger interface {
	LogExport(userID uint, path string, entriesCount int, err error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	StatusName(ctx context.Context, taskID string) (string, error)
}

// AuditReader pages through audit events.
type AuditReader interface {
	GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(eventType entities.AuditEventType, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
}
