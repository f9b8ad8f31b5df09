// Package entries implements the Entry Store: durable CRUD primitives for
// journal entries and their moods and tags.
//
// Multi-statement writes go through Transaction so that either every row lands
// or none does:
//
//	err := store.Transaction(func(tx *entries.Store) error {
//		id, err := tx.InsertEntry(date, content, nil, time.Now())
//		if err != nil {
//			return err
//		}
//		return tx.ReplaceChildren(id, moods, tags)
//	})
package entries

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/entities"
)

// Store handles journal entry persistence.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new entry store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn with a Store bound to a single transaction.
// Any error returned by fn rolls the transaction back and is returned unchanged.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	var fnErr error
	err := s.db.Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&Store{db: tx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return database.MapError(err)
}

// InsertEntry creates the entry row and returns its id.
// A second entry for the same date fails with ErrConstraintViolation.
func (s *Store) InsertEntry(date entities.Date, content string, category *string, createdAt time.Time) (uint, error) {
	if date.IsZero() {
		return 0, database.Validation("entry date is required")
	}
	entry := &entities.Entry{
		Date:      date,
		Content:   content,
		Category:  category,
		CreatedAt: entities.NewTimestamp(createdAt),
	}
	if err := s.db.Omit(clause.Associations).Create(entry).Error; err != nil {
		return 0, database.MapError(err)
	}
	return entry.ID, nil
}

// UpdateEntry rewrites content, category and updated_at of an existing entry.
func (s *Store) UpdateEntry(id uint, content string, category *string, updatedAt time.Time) error {
	updated := entities.NewTimestamp(updatedAt)
	result := s.db.Model(&entities.Entry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"content":    content,
			"category":   category,
			"updated_at": updated,
		})
	if result.Error != nil {
		return database.MapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", database.ErrEntryNotFound, id)
	}
	return nil
}

// DeleteEntry removes the entry for date together with its moods and tags.
// Deleting a date with no entry is not an error.
func (s *Store) DeleteEntry(date entities.Date) error {
	return s.Transaction(func(tx *Store) error {
		var entry entities.Entry
		err := tx.db.Select("id").Where("date = ?", date).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return database.MapError(err)
		}
		if err := tx.deleteChildren(entry.ID); err != nil {
			return err
		}
		if err := tx.db.Delete(&entities.Entry{}, entry.ID).Error; err != nil {
			return database.MapError(err)
		}
		return nil
	})
}

// ReplaceChildren clears every mood and tag of the entry and inserts the given ones.
// Ids on the inputs are ignored; the persisted rows are returned.
func (s *Store) ReplaceChildren(entryID uint, moods []entities.Mood, tags []entities.Tag) ([]entities.Mood, []entities.Tag, error) {
	var savedMoods []entities.Mood
	var savedTags []entities.Tag

	err := s.Transaction(func(tx *Store) error {
		if err := tx.deleteChildren(entryID); err != nil {
			return err
		}

		savedMoods = make([]entities.Mood, 0, len(moods))
		for _, m := range moods {
			row := entities.Mood{JournalEntryID: entryID, Type: m.Type, IsPrimary: m.IsPrimary}
			if err := tx.db.Omit(clause.Associations).Create(&row).Error; err != nil {
				return database.MapError(err)
			}
			savedMoods = append(savedMoods, row)
		}

		savedTags = make([]entities.Tag, 0, len(tags))
		for _, t := range tags {
			row := entities.Tag{JournalEntryID: entryID, Name: t.Name}
			if err := tx.db.Omit(clause.Associations).Create(&row).Error; err != nil {
				return database.MapError(err)
			}
			savedTags = append(savedTags, row)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return savedMoods, savedTags, nil
}

func (s *Store) deleteChildren(entryID uint) error {
	if err := s.db.Where("journal_entry_id = ?", entryID).Delete(&entities.Mood{}).Error; err != nil {
		return database.MapError(err)
	}
	if err := s.db.Where("journal_entry_id = ?", entryID).Delete(&entities.Tag{}).Error; err != nil {
		return database.MapError(err)
	}
	return nil
}

// GetEntryByDate returns the hydrated entry for date, or nil if there is none.
func (s *Store) GetEntryByDate(date entities.Date) (*entities.Entry, error) {
	var entry entities.Entry
	err := s.hydrated().Where("date = ?", date).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.MapError(err)
	}
	return &entry, nil
}

// GetAllEntries returns every entry, newest date first, ties by id.
func (s *Store) GetAllEntries() ([]entities.Entry, error) {
	return s.FindEntries()
}

// FindEntries returns hydrated entries matching all scopes, in display order.
func (s *Store) FindEntries(scopes ...Scope) ([]entities.Entry, error) {
	query := s.hydrated()
	for _, scope := range scopes {
		query = query.Scopes(scope)
	}

	entries := []entities.Entry{}
	if err := query.Order("date DESC").Order("id ASC").Find(&entries).Error; err != nil {
		return nil, database.MapError(err)
	}
	return entries, nil
}

// CountEntries returns the number of stored entries.
func (s *Store) CountEntries() (int64, error) {
	var count int64
	if err := s.db.Model(&entities.Entry{}).Count(&count).Error; err != nil {
		return 0, database.MapError(err)
	}
	return count, nil
}

func (s *Store) hydrated() *gorm.DB {
	return s.db.Model(&entities.Entry{}).
		Preload("Moods", orderByID).
		Preload("Tags", orderByID)
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
