package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MoodKind is a fixed enumeration of moods. Ordinals are persisted and must never be renumbered.
type MoodKind int

const (
	MoodHappy MoodKind = iota
	MoodSad
	MoodAngry
	MoodAnxious
	MoodExcited
	MoodCalm
	MoodTired
	MoodEnergetic
	MoodConfused
	MoodGrateful
	MoodLonely
	MoodContent
	MoodRelaxed
	MoodConfident
	MoodThoughtful
	MoodCurious
	MoodNostalgic
	MoodBored
	MoodStressed
)

var moodNames = [...]string{
	MoodHappy:      "Happy",
	MoodSad:        "Sad",
	MoodAngry:      "Angry",
	MoodAnxious:    "Anxious",
	MoodExcited:    "Excited",
	MoodCalm:       "Calm",
	MoodTired:      "Tired",
	MoodEnergetic:  "Energetic",
	MoodConfused:   "Confused",
	MoodGrateful:   "Grateful",
	MoodLonely:     "Lonely",
	MoodContent:    "Content",
	MoodRelaxed:    "Relaxed",
	MoodConfident:  "Confident",
	MoodThoughtful: "Thoughtful",
	MoodCurious:    "Curious",
	MoodNostalgic:  "Nostalgic",
	MoodBored:      "Bored",
	MoodStressed:   "Stressed",
}

// AllMoodKinds lists every mood kind in ordinal order.
func AllMoodKinds() []MoodKind {
	kinds := make([]MoodKind, len(moodNames))
	for i := range moodNames {
		kinds[i] = MoodKind(i)
	}
	return kinds
}

// Valid reports whether k is one of the defined kinds.
func (k MoodKind) Valid() bool {
	return k >= MoodHappy && int(k) < len(moodNames)
}

func (k MoodKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("MoodKind(%d)", int(k))
	}
	return moodNames[k]
}

// ParseMoodKind resolves a mood by name, ignoring case.
func ParseMoodKind(name string) (MoodKind, error) {
	name = strings.TrimSpace(name)
	for i, n := range moodNames {
		if strings.EqualFold(n, name) {
			return MoodKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mood %q", name)
}

// Entry is one journal record, keyed by its calendar date.
type Entry struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Date      Date       `gorm:"uniqueIndex;not null" json:"date"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Category  *string    `gorm:"type:text" json:"category,omitempty"`
	CreatedAt Timestamp  `gorm:"not null" json:"created_at"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
	Moods     []Mood     `gorm:"foreignKey:JournalEntryID;constraint:OnDelete:CASCADE" json:"moods"`
	Tags      []Tag      `gorm:"foreignKey:JournalEntryID;constraint:OnDelete:CASCADE" json:"tags"`
}

func (Entry) TableName() string {
	return "journal_entries"
}

// PrimaryMood returns the entry's primary mood, if any.
func (e *Entry) PrimaryMood() (MoodKind, bool) {
	for _, m := range e.Moods {
		if m.IsPrimary {
			return m.Type, true
		}
	}
	return 0, false
}

// SecondaryMoods returns the non-primary moods in stored order.
func (e *Entry) SecondaryMoods() []MoodKind {
	var kinds []MoodKind
	for _, m := range e.Moods {
		if !m.IsPrimary {
			kinds = append(kinds, m.Type)
		}
	}
	return kinds
}

// TagNames returns the entry's tag names in stored order.
func (e *Entry) TagNames() []string {
	names := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		names = append(names, t.Name)
	}
	return names
}

// CategoryName returns the category or "" when unset.
func (e *Entry) CategoryName() string {
	if e.Category == nil {
		return ""
	}
	return *e.Category
}

type Mood struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	JournalEntryID uint     `gorm:"index;not null" json:"journal_entry_id"`
	Type           MoodKind `gorm:"not null" json:"type"`
	IsPrimary      bool     `gorm:"not null" json:"is_primary"`
}

func (Mood) TableName() string {
	return "moods"
}

type Tag struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	JournalEntryID uint   `gorm:"index;not null" json:"journal_entry_id"`
	Name           string `gorm:"not null" json:"name"`
}

func (Tag) TableName() string {
	return "tags"
}

func (k MoodKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid mood kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *MoodKind) UnmarshalText(text []byte) error {
	parsed, err := ParseMoodKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// UnmarshalJSON accepts either the mood name or its ordinal.
func (k *MoodKind) UnmarshalJSON(data []byte) error {
	var ordinal int
	if err := json.Unmarshal(data, &ordinal); err == nil {
		kind := MoodKind(ordinal)
		if !kind.Valid() {
			return fmt.Errorf("invalid mood kind %d", ordinal)
		}
		*k = kind
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("mood must be a name or ordinal: %w", err)
	}
	return k.UnmarshalText([]byte(name))
}
