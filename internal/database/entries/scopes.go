package entries

import (
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/journal/internal/entities"
)

// Scope narrows an entry query.
type Scope func(db *gorm.DB) *gorm.DB

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContentOrTagContains matches entries whose content or any tag name contains
// term, ignoring case. Wildcards in term are matched literally.
func ContentOrTagContains(term string) Scope {
	pattern := "%" + likeEscaper.Replace(term) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			`(casefold(content) LIKE casefold(?) ESCAPE '\' OR id IN (SELECT journal_entry_id FROM tags WHERE casefold(name) LIKE casefold(?) ESCAPE '\'))`,
			pattern, pattern,
		)
	}
}

// HasMood matches entries with kind among their moods, primary or secondary.
func HasMood(kind entities.MoodKind) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (SELECT journal_entry_id FROM moods WHERE type = ?)", int(kind))
	}
}

// HasTag matches entries carrying a tag equal to name, ignoring case.
func HasTag(name string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (SELECT journal_entry_id FROM tags WHERE casefold(name) = casefold(?))", name)
	}
}

// Between matches entries dated from..to inclusive. A zero bound is open.
func Between(from, to entities.Date) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if !from.IsZero() {
			db = db.Where("date >= ?", from)
		}
		if !to.IsZero() {
			db = db.Where("date <= ?", to)
		}
		return db
	}
}
