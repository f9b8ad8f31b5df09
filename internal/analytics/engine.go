// Package analytics derives dashboard statistics from a snapshot of journal entries.
//
// The package-level functions are pure and operate on a slice of hydrated
// entries. Engine binds them to an EntrySource and a clock so callers can ask
// for statistics without passing the snapshot around.
package analytics

import (
	"log"
	"sort"
	"time"

	"github.com/mrlokans/journal/internal/entities"
)

// DefaultTagLimit is how many tags MostUsedTags returns when no limit is given.
const DefaultTagLimit = 10

// EntrySource provides the entry snapshot the engine works on.
type EntrySource interface {
	GetAllEntries() ([]entities.Entry, error)
}

// TagCount is a tag name with the number of entries using it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary is everything the dashboard shows, computed from one snapshot.
type Summary struct {
	Streak           int                       `json:"streak"`
	TotalEntries     int                       `json:"total_entries"`
	MoodDistribution map[entities.MoodKind]int `json:"mood_distribution"`
	TopTags          []TagCount                `json:"top_tags"`
	FirstEntryDate   *entities.Date            `json:"first_entry_date"`
	LastEntryDate    *entities.Date            `json:"last_entry_date"`
}

// Engine computes statistics over the entries of an EntrySource.
type Engine struct {
	source EntrySource
	now    func() time.Time
}

// NewEngine creates an engine that uses the local wall clock for "today".
func NewEngine(source EntrySource) *Engine {
	return NewEngineWithClock(source, time.Now)
}

// NewEngineWithClock creates an engine with an explicit clock.
func NewEngineWithClock(source EntrySource, now func() time.Time) *Engine {
	return &Engine{source: source, now: now}
}

// snapshot never fails: a read error is logged and treated as an empty journal.
func (e *Engine) snapshot() []entities.Entry {
	list, err := e.source.GetAllEntries()
	if err != nil {
		log.Printf("Failed to load entries for analytics: %v", err)
		return nil
	}
	return list
}

func (e *Engine) today() entities.Date {
	return entities.DateOf(e.now())
}

// Streak returns the number of consecutive days ending today that have an entry.
func (e *Engine) Streak() int {
	return Streak(e.snapshot(), e.today())
}

// TotalEntries returns the number of entries in the journal.
func (e *Engine) TotalEntries() int {
	return len(e.snapshot())
}

// MoodDistribution counts entries per primary mood.
func (e *Engine) MoodDistribution() map[entities.MoodKind]int {
	return MoodDistribution(e.snapshot())
}

// MostUsedTags returns up to limit tag names, most used first.
func (e *Engine) MostUsedTags(limit int) []string {
	return tagNames(TopTags(e.snapshot(), limit))
}

// FirstEntryDate returns the earliest entry date. ok is false for an empty journal.
func (e *Engine) FirstEntryDate() (entities.Date, bool) {
	return FirstEntryDate(e.snapshot())
}

// LastEntryDate returns the latest entry date. ok is false for an empty journal.
func (e *Engine) LastEntryDate() (entities.Date, bool) {
	return LastEntryDate(e.snapshot())
}

// Summary computes every statistic from a single snapshot.
func (e *Engine) Summary(tagLimit int) Summary {
	list := e.snapshot()
	summary := Summary{
		Streak:           Streak(list, e.today()),
		TotalEntries:     len(list),
		MoodDistribution: MoodDistribution(list),
		TopTags:          TopTags(list, tagLimit),
	}
	if first, ok := FirstEntryDate(list); ok {
		summary.FirstEntryDate = &first
	}
	if last, ok := LastEntryDate(list); ok {
		summary.LastEntryDate = &last
	}
	return summary
}

// Streak counts consecutive days with an entry, walking backward from today.
// There is no grace day: without an entry for today the streak is 0.
func Streak(list []entities.Entry, today entities.Date) int {
	days := make(map[entities.Date]bool, len(list))
	for _, entry := range list {
		days[entry.Date] = true
	}

	streak := 0
	for day := today; days[day]; day = day.AddDays(-1) {
		streak++
	}
	return streak
}

// MoodDistribution counts the primary mood of each entry.
// Secondary moods are not counted and entries without a primary mood add nothing.
func MoodDistribution(list []entities.Entry) map[entities.MoodKind]int {
	dist := make(map[entities.MoodKind]int)
	for i := range list {
		if kind, ok := list[i].PrimaryMood(); ok {
			dist[kind]++
		}
	}
	return dist
}

// TopTags counts tag names across entries and returns the limit most frequent.
// Ties keep the order in which the names were first seen. A limit <= 0 means DefaultTagLimit.
func TopTags(list []entities.Entry, limit int) []TagCount {
	if limit <= 0 {
		limit = DefaultTagLimit
	}

	index := make(map[string]int)
	var counts []TagCount
	for _, entry := range list {
		for _, tag := range entry.Tags {
			if i, ok := index[tag.Name]; ok {
				counts[i].Count++
				continue
			}
			index[tag.Name] = len(counts)
			counts = append(counts, TagCount{Name: tag.Name, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	if counts == nil {
		counts = []TagCount{}
	}
	return counts
}

// MostUsedTags is TopTags without the counts.
func MostUsedTags(list []entities.Entry, limit int) []string {
	return tagNames(TopTags(list, limit))
}

// FirstEntryDate returns the minimum entry date.
func FirstEntryDate(list []entities.Entry) (entities.Date, bool) {
	if len(list) == 0 {
		return entities.Date{}, false
	}
	first := list[0].Date
	for _, entry := range list[1:] {
		if entry.Date.Before(first) {
			first = entry.Date
		}
	}
	return first, true
}

// LastEntryDate returns the maximum entry date.
func LastEntryDate(list []entities.Entry) (entities.Date, bool) {
	if len(list) == 0 {
		return entities.Date{}, false
	}
	last := list[0].Date
	for _, entry := range list[1:] {
		if entry.Date.After(last) {
			last = entry.Date
		}
	}
	return last, true
}

func tagNames(counts []TagCount) []string {
	names := make([]string, len(counts))
	for i, c := range counts {
		names[i] = c.Name
	}
	return names
}
