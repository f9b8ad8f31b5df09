package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/journal/internal/analytics"
	"github.com/mrlokans/journal/internal/config"
	"github.com/mrlokans/journal/internal/entities"
	"github.com/mrlokans/journal/internal/entrypoint"
	"github.com/mrlokans/journal/internal/journal"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand("1.2.3")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func seedJournal(t *testing.T, dbPath string, dates ...string) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Database.Path = dbPath
	app, err := entrypoint.Open(cfg, logger.Silent)
	require.NoError(t, err)
	defer app.Close()

	mood := entities.MoodHappy
	for _, d := range dates {
		date, err := entities.ParseDate(d)
		require.NoError(t, err)
		entry, err := journal.Draft{Date: date, Content: "entry " + d, PrimaryMood: &mood, Tags: []string{"daily"}}.Entry()
		require.NoError(t, err)
		require.NoError(t, app.Journal.SaveEntry(entry))
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestExport(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	seedJournal(t, dbPath, "2024-01-01", "2024-01-02")

	t.Run("to explicit path", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "nested", "out.md")

		out, err := execute(t, "--db", dbPath, "export", "--out", target)

		require.NoError(t, err)
		assert.Contains(t, out, "Exported 2 entries to "+target)
		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(data), "entry 2024-01-01")
	})

	t.Run("to dated file in export dir", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("EXPORT_DIR", dir)

		_, err := execute(t, "--db", dbPath, "export")

		require.NoError(t, err)
		matches, err := filepath.Glob(filepath.Join(dir, "journal-*.md"))
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})
}

func TestStats(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	seedJournal(t, dbPath, "2024-01-01", "2024-01-02")

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "--db", dbPath, "stats", "--json", "--limit", "1")
		require.NoError(t, err)

		var summary analytics.Summary
		require.NoError(t, json.Unmarshal([]byte(out), &summary))
		assert.Equal(t, 2, summary.TotalEntries)
		assert.Equal(t, map[entities.MoodKind]int{entities.MoodHappy: 2}, summary.MoodDistribution)
		assert.Equal(t, []analytics.TagCount{{Name: "daily", Count: 2}}, summary.TopTags)
		require.NotNil(t, summary.FirstEntryDate)
		assert.Equal(t, "2024-01-01", summary.FirstEntryDate.String())
	})

	t.Run("table", func(t *testing.T) {
		out, err := execute(t, "--db", dbPath, "stats")
		require.NoError(t, err)

		assert.Contains(t, out, "Entries:")
		assert.Contains(t, out, "Happy")
		assert.Contains(t, out, "daily")
		assert.Contains(t, out, "2024-01-02")
	})

	t.Run("negative limit", func(t *testing.T) {
		_, err := execute(t, "--db", dbPath, "stats", "--limit=-1")
		assert.Error(t, err)
	})
}

func TestUserCreate(t *testing.T) {
	t.Setenv("AUTH_BCRYPT_COST", "4")
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	out, err := execute(t, "--db", dbPath, "user", "create", "--username", "anna", "--password", "correct-horse", "--pin", "1234")
	require.NoError(t, err)
	assert.Contains(t, out, "Created user anna")

	_, err = execute(t, "--db", dbPath, "user", "create", "--username", "anna", "--password", "another-pass")
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "--db", dbPath, "user", "create", "--username", "x", "--password", "correct-horse")
	assert.Error(t, err)

	_, err = execute(t, "--db", dbPath, "user", "create", "--username", "bob")
	assert.Error(t, err)
}
