package entries

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/entities"
)

func setupTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "journal.db"), database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db.DB), db.DB
}

func strPtr(s string) *string { return &s }

var created = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func TestStore_InsertAndGet(t *testing.T) {
	store, _ := setupTestStore(t)
	date := entities.NewDate(2024, 5, 1)

	id, err := store.InsertEntry(date, "A quiet morning", strPtr("Reflection"), created)
	require.NoError(t, err)
	assert.NotZero(t, id)

	entry, err := store.GetEntryByDate(date)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, id, entry.ID)
	assert.Equal(t, "A quiet morning", entry.Content)
	assert.Equal(t, "Reflection", entry.CategoryName())
	assert.True(t, entry.CreatedAt.Equal(created))
	assert.Nil(t, entry.UpdatedAt)
	assert.Empty(t, entry.Moods)
	assert.Empty(t, entry.Tags)
}

func TestStore_InsertDuplicateDate(t *testing.T) {
	store, _ := setupTestStore(t)
	date := entities.NewDate(2024, 5, 1)

	_, err := store.InsertEntry(date, "first", nil, created)
	require.NoError(t, err)

	_, err = store.InsertEntry(date, "second", nil, created)
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrConstraintViolation)
}

func TestStore_InsertRequiresDate(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.InsertEntry(entities.Date{}, "no date", nil, created)
	assert.ErrorIs(t, err, database.ErrValidation)
}

func TestStore_GetEntryByDate_Missing(t *testing.T) {
	store, _ := setupTestStore(t)

	entry, err := store.GetEntryByDate(entities.NewDate(2020, 1, 1))
	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestStore_UpdateEntry(t *testing.T) {
	store, _ := setupTestStore(t)
	date := entities.NewDate(2024, 5, 1)
	id, err := store.InsertEntry(date, "draft", strPtr("Work"), created)
	require.NoError(t, err)

	updatedAt := created.Add(2 * time.Hour)
	require.NoError(t, store.UpdateEntry(id, "final", nil, updatedAt))

	entry, err := store.GetEntryByDate(date)
	require.NoError(t, err)
	assert.Equal(t, "final", entry.Content)
	assert.Nil(t, entry.Category)
	require.NotNil(t, entry.UpdatedAt)
	assert.True(t, entry.UpdatedAt.Equal(updatedAt))
	assert.True(t, entry.CreatedAt.Equal(created))
}

func TestStore_UpdateEntry_MissingID(t *testing.T) {
	store, _ := setupTestStore(t)

	err := store.UpdateEntry(999, "nothing", nil, created)
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrEntryNotFound)
	assert.ErrorIs(t, err, database.ErrStorage)
}

func TestStore_ReplaceChildren(t *testing.T) {
	store, _ := setupTestStore(t)
	date := entities.NewDate(2024, 5, 1)
	id, err := store.InsertEntry(date, "content", nil, created)
	require.NoError(t, err)

	_, _, err = store.ReplaceChildren(id,
		[]entities.Mood{{Type: entities.MoodHappy, IsPrimary: true}, {Type: entities.MoodTired}},
		[]entities.Tag{{Name: "Work"}, {Name: "Coffee"}},
	)
	require.NoError(t, err)

	moods, tags, err := store.ReplaceChildren(id,
		[]entities.Mood{{ID: 42, Type: entities.MoodCalm, IsPrimary: true}},
		[]entities.Tag{{Name: "Nature"}},
	)
	require.NoError(t, err)
	require.Len(t, moods, 1)
	assert.NotEqual(t, uint(42), moods[0].ID)
	assert.Equal(t, id, moods[0].JournalEntryID)
	require.Len(t, tags, 1)

	entry, err := store.GetEntryByDate(date)
	require.NoError(t, err)
	require.Len(t, entry.Moods, 1)
	assert.Equal(t, entities.MoodCalm, entry.Moods[0].Type)
	assert.True(t, entry.Moods[0].IsPrimary)
	assert.Equal(t, []string{"Nature"}, entry.TagNames())
}

func TestStore_DeleteEntry_Cascades(t *testing.T) {
	store, db := setupTestStore(t)
	date := entities.NewDate(2024, 5, 1)
	id, err := store.InsertEntry(date, "content", nil, created)
	require.NoError(t, err)
	_, _, err = store.ReplaceChildren(id,
		[]entities.Mood{{Type: entities.MoodSad, IsPrimary: true}},
		[]entities.Tag{{Name: "Rain"}},
	)
	require.NoError(t, err)

	require.NoError(t, store.DeleteEntry(date))

	entry, err := store.GetEntryByDate(date)
	require.NoError(t, err)
	assert.Nil(t, entry)

	var moods, tags int64
	require.NoError(t, db.Model(&entities.Mood{}).Count(&moods).Error)
	require.NoError(t, db.Model(&entities.Tag{}).Count(&tags).Error)
	assert.Zero(t, moods)
	assert.Zero(t, tags)
}

func TestStore_ForeignKeyCascade(t *testing.T) {
	store, db := setupTestStore(t)
	id, err := store.InsertEntry(entities.NewDate(2024, 5, 1), "content", nil, created)
	require.NoError(t, err)
	_, _, err = store.ReplaceChildren(id,
		[]entities.Mood{{Type: entities.MoodSad, IsPrimary: true}},
		[]entities.Tag{{Name: "Rain"}},
	)
	require.NoError(t, err)

	// Bypass the store so only the schema-level constraint is exercised.
	require.NoError(t, db.Exec("DELETE FROM journal_entries WHERE id = ?", id).Error)

	var moods, tags int64
	require.NoError(t, db.Model(&entities.Mood{}).Count(&moods).Error)
	require.NoError(t, db.Model(&entities.Tag{}).Count(&tags).Error)
	assert.Zero(t, moods)
	assert.Zero(t, tags)
}

func TestStore_DeleteEntry_Missing(t *testing.T) {
	store, _ := setupTestStore(t)
	assert.NoError(t, store.DeleteEntry(entities.NewDate(1999, 12, 31)))
}

func TestStore_GetAllEntries_Ordering(t *testing.T) {
	store, _ := setupTestStore(t)

	for _, d := range []entities.Date{
		entities.NewDate(2024, 5, 2),
		entities.NewDate(2024, 4, 30),
		entities.NewDate(2024, 5, 10),
	} {
		_, err := store.InsertEntry(d, d.String(), nil, created)
		require.NoError(t, err)
	}

	all, err := store.GetAllEntries()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-05-10", all[0].Date.String())
	assert.Equal(t, "2024-05-02", all[1].Date.String())
	assert.Equal(t, "2024-04-30", all[2].Date.String())

	count, err := store.CountEntries()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestStore_GetAllEntries_Empty(t *testing.T) {
	store, _ := setupTestStore(t)

	all, err := store.GetAllEntries()
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestStore_Transaction_RollsBack(t *testing.T) {
	store, _ := setupTestStore(t)
	date := entities.NewDate(2024, 5, 1)
	boom := errors.New("boom")

	err := store.Transaction(func(tx *Store) error {
		id, err := tx.InsertEntry(date, "half written", nil, created)
		if err != nil {
			return err
		}
		if _, _, err := tx.ReplaceChildren(id, []entities.Mood{{Type: entities.MoodHappy, IsPrimary: true}}, nil); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	entry, err := store.GetEntryByDate(date)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestStore_FindEntries_Scopes(t *testing.T) {
	store, _ := setupTestStore(t)

	seed := []struct {
		date    entities.Date
		content string
		moods   []entities.Mood
		tags    []entities.Tag
	}{
		{entities.NewDate(2024, 1, 1), "Practising gratitude daily", []entities.Mood{{Type: entities.MoodGrateful, IsPrimary: true}}, nil},
		{entities.NewDate(2024, 1, 2), "Met old colleagues", []entities.Mood{{Type: entities.MoodHappy, IsPrimary: true}, {Type: entities.MoodNostalgic}}, []entities.Tag{{Name: "Friends"}}},
		{entities.NewDate(2024, 1, 3), "Nothing special", []entities.Mood{{Type: entities.MoodBored, IsPrimary: true}}, []entities.Tag{{Name: "Gratitude"}, {Name: "Friendship"}}},
		{entities.NewDate(2024, 1, 4), "100% done_today", nil, nil},
		{entities.NewDate(2024, 1, 5), "ÜBER DANKBARKEIT", nil, []entities.Tag{{Name: "Café"}}},
	}
	for _, s := range seed {
		id, err := store.InsertEntry(s.date, s.content, nil, created)
		require.NoError(t, err)
		_, _, err = store.ReplaceChildren(id, s.moods, s.tags)
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		scope Scope
		want  []string
	}{
		{"content or tag, case-insensitive", ContentOrTagContains("GRATITUDE"), []string{"2024-01-03", "2024-01-01"}},
		{"percent is literal", ContentOrTagContains("100%"), []string{"2024-01-04"}},
		{"underscore is literal", ContentOrTagContains("e_t"), []string{"2024-01-04"}},
		{"secondary mood matches", HasMood(entities.MoodNostalgic), []string{"2024-01-02"}},
		{"primary mood matches", HasMood(entities.MoodBored), []string{"2024-01-03"}},
		{"tag exact, case-insensitive", HasTag("friends"), []string{"2024-01-02"}},
		{"non-ascii content folds case", ContentOrTagContains("über"), []string{"2024-01-05"}},
		{"non-ascii tag substring folds case", ContentOrTagContains("CAF"), []string{"2024-01-05"}},
		{"non-ascii tag exact folds case", HasTag("CAFÉ"), []string{"2024-01-05"}},
		{"date range", Between(entities.NewDate(2024, 1, 2), entities.NewDate(2024, 1, 3)), []string{"2024-01-03", "2024-01-02"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := store.FindEntries(tt.scope)
			require.NoError(t, err)

			dates := make([]string, 0, len(found))
			for _, e := range found {
				dates = append(dates, e.Date.String())
			}
			assert.Equal(t, tt.want, dates)
		})
	}
}
