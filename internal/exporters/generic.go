package exporters

import (
	"time"

	"github.com/mrlokans/journal/internal/entities"
)

// DocumentExporter renders a list of entries into a single document at path.
type DocumentExporter interface {
	Export(entries []entities.Entry, path string) (ExportResult, error)
}

// EntryReader is the read side the database exporter needs.
type EntryReader interface {
	GetAllEntries() ([]entities.Entry, error)
}

type ExportResult struct {
	ExportID         string    `json:"export_id"`
	Path             string    `json:"path"`
	EntriesProcessed int       `json:"entries_processed"`
	ExportedAt       time.Time `json:"exported_at"`
}
