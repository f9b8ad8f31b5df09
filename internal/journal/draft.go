package journal

import (
	"strings"

	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/entities"
)

// MaxSecondaryMoods is how many secondary moods a writer may attach to an entry.
const MaxSecondaryMoods = 2

// DefaultPrimaryMood is used when a draft does not pick a primary mood.
const DefaultPrimaryMood = entities.MoodCalm

// NoCategory is the placeholder the entry form uses for "no category".
const NoCategory = "None"

// Draft is an entry as composed by a writer (the HTTP API, CLI or an editor),
// before the writer policy has been applied.
type Draft struct {
	Date           entities.Date       `json:"date"`
	Content        string              `json:"content"`
	Category       string              `json:"category,omitempty"`
	PrimaryMood    *entities.MoodKind  `json:"primary_mood"`
	SecondaryMoods []entities.MoodKind `json:"secondary_moods,omitempty"`
	Tags           []string            `json:"tags,omitempty"`
}

// Entry applies the writer policy and returns an entry ready for SaveEntry:
//
//   - exactly one primary mood, DefaultPrimaryMood when none was picked;
//   - at most MaxSecondaryMoods secondaries are kept, never repeating the primary
//     or each other;
//   - tags are trimmed, blanks dropped and case-insensitive repeats removed;
//   - a blank or "None" category is stored as no category.
func (d Draft) Entry() (*entities.Entry, error) {
	if d.Date.IsZero() {
		return nil, database.Validation("date is required")
	}
	primary := DefaultPrimaryMood
	if d.PrimaryMood != nil {
		primary = *d.PrimaryMood
	}
	if !primary.Valid() {
		return nil, database.Validation("unknown primary mood %d", int(primary))
	}

	entry := &entities.Entry{
		Date:     d.Date,
		Content:  d.Content,
		Category: normalizeCategory(d.Category),
	}

	entry.Moods = append(entry.Moods, entities.Mood{Type: primary, IsPrimary: true})
	used := map[entities.MoodKind]bool{primary: true}
	for _, kind := range d.SecondaryMoods {
		if len(entry.Moods)-1 >= MaxSecondaryMoods {
			break
		}
		if !kind.Valid() || used[kind] {
			continue
		}
		used[kind] = true
		entry.Moods = append(entry.Moods, entities.Mood{Type: kind})
	}

	for _, name := range NormalizeTags(d.Tags) {
		entry.Tags = append(entry.Tags, entities.Tag{Name: name})
	}

	return entry, nil
}

// DraftFromEntry is the inverse of Draft.Entry, used to pre-fill an editor.
func DraftFromEntry(entry *entities.Entry) Draft {
	d := Draft{
		Date:     entry.Date,
		Content:  entry.Content,
		Category: entry.CategoryName(),
		Tags:     entry.TagNames(),
	}
	if kind, ok := entry.PrimaryMood(); ok {
		d.PrimaryMood = &kind
	}
	d.SecondaryMoods = entry.SecondaryMoods()
	return d
}

// NormalizeTags trims names, drops blanks and removes case-insensitive
// duplicates, keeping the first spelling seen.
func NormalizeTags(names []string) []string {
	var out []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

func normalizeCategory(category string) *string {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, NoCategory) {
		return nil
	}
	return &category
}
