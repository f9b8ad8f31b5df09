package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/journal/internal/entities"
	"github.com/mrlokans/journal/internal/exporters"
	"github.com/mrlokans/journal/internal/tasks"
)

type fakeQueue struct {
	enqueued []backlite.Task
	err      error
	statuses map[string]string
}

func (q *fakeQueue) Enqueue(_ context.Context, task backlite.Task) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, task)
	return "task-1", nil
}

func (q *fakeQueue) StatusName(_ context.Context, taskID string) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	if status, ok := q.statuses[taskID]; ok {
		return status, nil
	}
	return "not_found", nil
}

type fakeSchedule struct {
	running bool
	next    *time.Time
}

func (s fakeSchedule) IsRunning() bool { return s.running }
func (s fakeSchedule) NextRun() *time.Time { return s.next }

var exportDay = time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)

func newExportRouter(controller *ExportController) *gin.Engine {
	controller.now = func() time.Time { return exportDay }
	router := gin.New()
	router.POST("/api/export", controller.Export)
	router.GET("/api/export/schedule", controller.GetSchedule)
	return router
}

func TestExportController_Inline(t *testing.T) {
	repo, _ := setupJournalRepo(t)
	seedEntry(t, repo, "2024-06-30", "Last day of June", entities.MoodContent, "summer")
	seedEntry(t, repo, "2024-06-01", "First day of June", entities.MoodHappy)

	dir := t.TempDir()
	events := &eventRecorder{}
	exporter := exporters.NewDatabaseExporter(repo, exporters.NewMarkdownExporter())
	router := newExportRouter(NewExportController(exporter, events, nil, nil, dir))

	w := serve(router, http.MethodPost, "/api/export", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result exporters.ExportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.EntriesProcessed)
	assert.Equal(t, filepath.Join(dir, "journal-2024-07-01.md"), result.Path)
	assert.NotEmpty(t, result.ExportID)

	content, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "## 2024-06-01")
	assert.Contains(t, string(content), "Last day of June")

	recorded := events.all()
	require.Len(t, recorded, 1)
	assert.Equal(t, "export", recorded[0].kind)
	assert.Equal(t, 2, recorded[0].count)
	assert.NoError(t, recorded[0].err)
}

func TestExportController_Filename(t *testing.T) {
	repo, _ := setupJournalRepo(t)
	dir := t.TempDir()
	exporter := exporters.NewDatabaseExporter(repo, exporters.NewMarkdownExporter())
	router := newExportRouter(NewExportController(exporter, nil, nil, nil, dir))

	t.Run("bare name gets md suffix", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/api/export", `{"filename":"backup"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		_, err := os.Stat(filepath.Join(dir, "backup.md"))
		assert.NoError(t, err)
	})

	t.Run("name is sanitized", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/api/export", `{"filename":"notes: #2024?.md"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		_, err := os.Stat(filepath.Join(dir, "notes 2024.md"))
		assert.NoError(t, err)
	})

	for _, name := range []string{"../escape.md", "sub/dir.md", ".."} {
		t.Run("rejects "+name, func(t *testing.T) {
			w := serve(router, http.MethodPost, "/api/export", `{"filename":"`+name+`"}`)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestExportController_Queued(t *testing.T) {
	dir := t.TempDir()
	queue := &fakeQueue{}
	router := newExportRouter(NewExportController(nil, nil, queue, nil, dir))

	c := serve(router, http.MethodPost, "/api/export", "")
	require.Equal(t, http.StatusAccepted, c.Code)
	assert.Contains(t, c.Body.String(), `"task_id":"task-1"`)

	require.Len(t, queue.enqueued, 1)
	task, ok := queue.enqueued[0].(tasks.ExportJournalTask)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "journal-2024-07-01.md"), task.Path)
	assert.Equal(t, uint(0), task.UserID)
}

func TestExportController_QueueFailure(t *testing.T) {
	router := newExportRouter(NewExportController(nil, nil, &fakeQueue{err: errors.New("queue closed")}, nil, t.TempDir()))

	w := serve(router, http.MethodPost, "/api/export", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestExportController_NoExportDir(t *testing.T) {
	router := newExportRouter(NewExportController(nil, nil, &fakeQueue{}, nil, ""))

	w := serve(router, http.MethodPost, "/api/export", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestExportController_GetSchedule(t *testing.T) {
	t.Run("without scheduler", func(t *testing.T) {
		router := newExportRouter(NewExportController(nil, nil, nil, nil, "/exports"))

		w := serve(router, http.MethodGet, "/api/export/schedule", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"export_dir":"/exports","running":false,"next_run":null}`, w.Body.String())
	})

	t.Run("with scheduled run", func(t *testing.T) {
		next := time.Date(2024, 7, 2, 3, 0, 0, 0, time.UTC)
		router := newExportRouter(NewExportController(nil, nil, nil, fakeSchedule{running: true, next: &next}, "/exports"))

		w := serve(router, http.MethodGet, "/api/export/schedule", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"export_dir":"/exports","running":true,"next_run":"2024-07-02T03:00:00Z"}`, w.Body.String())
	})
}

func TestTasksController_GetTaskStatus(t *testing.T) {
	queue := &fakeQueue{statuses: map[string]string{"abc": "success"}}
	controller := NewTasksController(queue)
	router := gin.New()
	router.GET("/api/tasks/types", controller.ListTaskTypes)
	router.GET("/api/tasks/:id", controller.GetTaskStatus)

	w := serve(router, http.MethodGet, "/api/tasks/abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"abc","status":"success"}`, w.Body.String())

	w = serve(router, http.MethodGet, "/api/tasks/zzz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")

	w = serve(router, http.MethodGet, "/api/tasks/types", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "export_journal")
	assert.Contains(t, w.Body.String(), "cleanup_audit_events")

	queue.err = errors.New("db gone")
	w = serve(router, http.MethodGet, "/api/tasks/abc", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
