package tasks

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/journal/internal/exporters"
)

// JournalExporter writes the complete journal to a file.
type JournalExporter interface {
	ExportAll(path string) (exporters.ExportResult, error)
}

// ExportEventLogger records the outcome of an export in the audit trail.
type ExportEventLogger interface {
	LogExport(userID uint, path string, entriesCount int, err error)
}

// ExportJournalTask writes the journal as markdown to Path.
type ExportJournalTask struct {
	Path   string `json:"path"`
	UserID uint   `json:"user_id"`
}

// Config returns the queue configuration for journal export tasks.
func (t ExportJournalTask) Config() backlite.QueueConfig {
	settings := currentSettings()
	return backlite.QueueConfig{
		Name:        "export_journal",
		MaxAttempts: settings.MaxRetries,
		Backoff:     settings.RetryDelay,
		Timeout:     settings.TaskTimeout,
		Retention: &backlite.Retention{
			Duration:   settings.RetentionDuration,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ExportJournalProcessor creates a processor function for ExportJournalTask.
// events may be nil.
func ExportJournalProcessor(exporter JournalExporter, events ExportEventLogger) backlite.QueueProcessor[ExportJournalTask] {
	return func(ctx context.Context, task ExportJournalTask) error {
		if exporter == nil {
			return fmt.Errorf("journal exporter not configured")
		}
		if task.Path == "" {
			return fmt.Errorf("export path is required")
		}

		result, err := exporter.ExportAll(task.Path)
		if events != nil {
			events.LogExport(task.UserID, task.Path, result.EntriesProcessed, err)
		}
		if err != nil {
			return fmt.Errorf("export journal to %s: %w", task.Path, err)
		}

		log.Printf("[TASK] Exported %d entries to %s", result.EntriesProcessed, result.Path)
		return nil
	}
}

// NewExportJournalQueue creates a backlite queue for journal export tasks.
func NewExportJournalQueue(exporter JournalExporter, events ExportEventLogger) backlite.Queue {
	return backlite.NewQueue(ExportJournalProcessor(exporter, events))
}

// DatedExportPath returns dir/journal-<yyyy-MM-dd>.md for the given day.
func DatedExportPath(dir string, day time.Time) string {
	return filepath.Join(dir, "journal-"+day.Format("2006-01-02")+".md")
}
