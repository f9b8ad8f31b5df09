// Package journal is the entry-level command and query surface over the Entry Store.
//
// SaveEntry is the only way to create or edit history: it upserts by date and
// replaces the entry's moods and tags wholesale inside one transaction.
//
// # Usage
//
//	repo := journal.NewRepository(entries.NewStore(db.DB))
//	err := repo.SaveEntry(&entities.Entry{Date: entities.Today(), Content: "..."})
//	matches, err := repo.SearchEntries("gratitude")
package journal

import (
	"strings"
	"time"

	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/database/entries"
	"github.com/mrlokans/journal/internal/entities"
)

// Repository implements the upsert policy and read operations for journal entries.
type Repository struct {
	store *entries.Store
	now   func() time.Time
}

// NewRepository creates a repository over store.
func NewRepository(store *entries.Store) *Repository {
	return &Repository{store: store, now: time.Now}
}

// SaveEntry inserts or updates the entry for entry.Date.
//
// An existing entry keeps its id and creation time; its content, category and
// updated time are rewritten and its moods and tags are replaced. On success
// entry reflects what was persisted, including ids.
func (r *Repository) SaveEntry(entry *entities.Entry) error {
	if entry == nil {
		return database.Validation("entry is required")
	}
	if entry.Date.IsZero() {
		return database.Validation("entry date is required")
	}

	moods := persistableMoods(entry.Moods)
	tags := persistableTags(entry.Tags)
	now := r.now()

	var saved entities.Entry
	err := r.store.Transaction(func(tx *entries.Store) error {
		existing, err := tx.GetEntryByDate(entry.Date)
		if err != nil {
			return err
		}

		if existing != nil {
			if err := tx.UpdateEntry(existing.ID, entry.Content, entry.Category, now); err != nil {
				return err
			}
			updated := entities.NewTimestamp(now)
			saved = entities.Entry{
				ID:        existing.ID,
				CreatedAt: existing.CreatedAt,
				UpdatedAt: &updated,
			}
		} else {
			createdAt := now
			if !entry.CreatedAt.IsZero() {
				createdAt = entry.CreatedAt.Time
			}
			id, err := tx.InsertEntry(entry.Date, entry.Content, entry.Category, createdAt)
			if err != nil {
				return err
			}
			saved = entities.Entry{ID: id, CreatedAt: entities.NewTimestamp(createdAt)}
		}

		savedMoods, savedTags, err := tx.ReplaceChildren(saved.ID, moods, tags)
		if err != nil {
			return err
		}
		saved.Moods = savedMoods
		saved.Tags = savedTags
		return nil
	})
	if err != nil {
		return err
	}

	entry.ID = saved.ID
	entry.CreatedAt = saved.CreatedAt
	entry.UpdatedAt = saved.UpdatedAt
	entry.Moods = saved.Moods
	entry.Tags = saved.Tags
	return nil
}

// DeleteEntry removes the entry for date. Missing dates are ignored.
func (r *Repository) DeleteEntry(date entities.Date) error {
	return r.store.DeleteEntry(date)
}

// GetEntryByDate returns the entry for date, or nil when there is none.
func (r *Repository) GetEntryByDate(date entities.Date) (*entities.Entry, error) {
	return r.store.GetEntryByDate(date)
}

// GetAllEntries returns every entry, newest first.
func (r *Repository) GetAllEntries() ([]entities.Entry, error) {
	return r.store.GetAllEntries()
}

// SearchEntries returns entries whose content or any tag name contains term, ignoring case.
func (r *Repository) SearchEntries(term string) ([]entities.Entry, error) {
	if strings.TrimSpace(term) == "" {
		return r.store.GetAllEntries()
	}
	return r.store.FindEntries(entries.ContentOrTagContains(term))
}

// FilterByMood returns entries that carry kind as a primary or secondary mood.
func (r *Repository) FilterByMood(kind entities.MoodKind) ([]entities.Entry, error) {
	return r.store.FindEntries(entries.HasMood(kind))
}

// FilterByTag returns entries with a tag equal to name, ignoring case.
func (r *Repository) FilterByTag(name string) ([]entities.Entry, error) {
	return r.store.FindEntries(entries.HasTag(strings.TrimSpace(name)))
}

// GetEntriesBetween returns entries dated from..to inclusive, newest first.
func (r *Repository) GetEntriesBetween(from, to entities.Date) ([]entities.Entry, error) {
	return r.store.FindEntries(entries.Between(from, to))
}

// CountEntries returns the number of stored entries.
func (r *Repository) CountEntries() (int64, error) {
	return r.store.CountEntries()
}

// persistableMoods drops moods outside the enumeration.
// The one-primary, two-secondary policy belongs to the writer (see Draft), not here.
func persistableMoods(moods []entities.Mood) []entities.Mood {
	out := make([]entities.Mood, 0, len(moods))
	for _, m := range moods {
		if !m.Type.Valid() {
			continue
		}
		out = append(out, entities.Mood{Type: m.Type, IsPrimary: m.IsPrimary})
	}
	return out
}

// persistableTags drops blank names. Case-insensitive uniqueness is the writer's job (see NormalizeTags).
func persistableTags(tags []entities.Tag) []entities.Tag {
	out := make([]entities.Tag, 0, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t.Name) == "" {
			continue
		}
		out = append(out, entities.Tag{Name: t.Name})
	}
	return out
}
