package exporters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/entities"
)

const documentTitle = "Journal Export"

type frontMatter struct {
	Title       string   `yaml:"title"`
	ContentType string   `yaml:"content_type"`
	ExportID    string   `yaml:"export_id"`
	ExportedAt  string   `yaml:"exported_at"`
	Entries     int      `yaml:"entries"`
	FirstEntry  string   `yaml:"first_entry,omitempty"`
	LastEntry   string   `yaml:"last_entry,omitempty"`
	Tags        []string `yaml:"tags,flow"`
}

// MarkdownExporter writes the whole journal as one markdown document, oldest entry first.
type MarkdownExporter struct {
	now func() time.Time
}

func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{now: time.Now}
}

// Export sorts a copy of entries by date and writes it to path, creating parent directories.
func (exporter *MarkdownExporter) Export(entries []entities.Entry, path string) (ExportResult, error) {
	if entries == nil {
		return ExportResult{}, database.Validation("entries list cannot be nil")
	}
	if strings.TrimSpace(path) == "" {
		return ExportResult{}, database.Validation("export path cannot be empty")
	}

	result := ExportResult{
		ExportID:   uuid.NewString(),
		Path:       path,
		ExportedAt: exporter.now(),
	}

	sorted := sortedByDate(entries)
	document, err := GenerateMarkdown(sorted, result.ExportID, result.ExportedAt)
	if err != nil {
		return ExportResult{}, err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return ExportResult{}, fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(document), 0600); err != nil {
		return ExportResult{}, fmt.Errorf("failed to write export: %w", err)
	}

	result.EntriesProcessed = len(sorted)
	return result, nil
}

func sortedByDate(entries []entities.Entry) []entities.Entry {
	sorted := make([]entities.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// GenerateMarkdown renders entries, already in display order, under a YAML front matter block.
func GenerateMarkdown(entries []entities.Entry, exportID string, exportedAt time.Time) (string, error) {
	meta := frontMatter{
		Title:       documentTitle,
		ContentType: "journal",
		ExportID:    exportID,
		ExportedAt:  exportedAt.UTC().Format(time.RFC3339),
		Entries:     len(entries),
		Tags:        []string{"journal"},
	}
	if len(entries) > 0 {
		meta.FirstEntry = entries[0].Date.String()
		meta.LastEntry = entries[len(entries)-1].Date.String()
	}

	header, err := yaml.Marshal(&meta)
	if err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}

	var builder strings.Builder
	builder.WriteString("---\n")
	builder.Write(header)
	builder.WriteString("---\n\n")
	fmt.Fprintf(&builder, "# %s\n", documentTitle)

	for i := range entries {
		builder.WriteString("\n")
		writeEntry(&builder, &entries[i])
	}

	return builder.String(), nil
}

func writeEntry(builder *strings.Builder, entry *entities.Entry) {
	fmt.Fprintf(builder, "## %s\n\n", entry.Date.String())

	if len(entry.Moods) > 0 {
		mood := "None"
		if primary, ok := entry.PrimaryMood(); ok {
			mood = primary.String()
		}
		if secondary := entry.SecondaryMoods(); len(secondary) > 0 {
			names := make([]string, len(secondary))
			for i, kind := range secondary {
				names[i] = kind.String()
			}
			mood += " (also: " + strings.Join(names, ", ") + ")"
		}
		fmt.Fprintf(builder, "Mood: %s\n", mood)
	}

	if category := entry.CategoryName(); category != "" {
		fmt.Fprintf(builder, "Category: %s\n", category)
	}

	var tags []string
	for _, name := range entry.TagNames() {
		if strings.TrimSpace(name) != "" {
			tags = append(tags, name)
		}
	}
	if len(tags) > 0 {
		fmt.Fprintf(builder, "Tags: %s\n", strings.Join(tags, ", "))
	}

	builder.WriteString("\n")
	if content := strings.TrimRight(entry.Content, "\n"); content != "" {
		builder.WriteString(content)
		builder.WriteString("\n")
	}
}
