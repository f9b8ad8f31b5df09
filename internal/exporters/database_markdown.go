package exporters

import (
	"fmt"
	"log"
)

// DatabaseExporter reads every stored entry and hands them to a DocumentExporter.
type DatabaseExporter struct {
	reader   EntryReader
	exporter DocumentExporter
}

func NewDatabaseExporter(reader EntryReader, exporter DocumentExporter) *DatabaseExporter {
	return &DatabaseExporter{
		reader:   reader,
		exporter: exporter,
	}
}

// ExportAll exports the complete journal to path.
func (e *DatabaseExporter) ExportAll(path string) (ExportResult, error) {
	entries, err := e.reader.GetAllEntries()
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to read entries: %w", err)
	}

	result, err := e.exporter.Export(entries, path)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to export to markdown: %w", err)
	}

	log.Printf("Export completed: %d entries written to %s (export %s)", result.EntriesProcessed, result.Path, result.ExportID)
	return result, nil
}

var _ DocumentExporter = (*MarkdownExporter)(nil)
