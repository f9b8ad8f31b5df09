package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/journal/internal/tasks"
	"github.com/mrlokans/journal/internal/utils"
)

// ScheduleInfo reports the state of the periodic export.
type ScheduleInfo interface {
	IsRunning() bool
	NextRun() *time.Time
}

// ExportController triggers markdown exports of the journal.
type ExportController struct {
	exporter  JournalExporter
	events    ExportEventLogger
	queue     TaskQueue
	schedule  ScheduleInfo
	exportDir string
	now       func() time.Time
}

// ExportRequest is the optional body of POST /api/export.
type ExportRequest struct {
	// Filename is created inside the configured export directory.
	// Defaults to journal-<yyyy-MM-dd>.md.
	Filename string `json:"filename"`
}

// NewExportController creates an export controller. queue, events and schedule may be nil;
// without a queue exports run inline.
func NewExportController(exporter JournalExporter, events ExportEventLogger, queue TaskQueue, schedule ScheduleInfo, exportDir string) *ExportController {
	return &ExportController{
		exporter:  exporter,
		events:    events,
		queue:     queue,
		schedule:  schedule,
		exportDir: exportDir,
		now:       time.Now,
	}
}

// Export handles POST /api/export
func (ec *ExportController) Export(c *gin.Context) {
	if ec.exportDir == "" {
		respondError(c, http.StatusServiceUnavailable, "export directory not configured")
		return
	}

	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	path, ok := ec.exportPath(c, req.Filename)
	if !ok {
		return
	}
	userID := GetUserID(c)

	if ec.queue != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		taskID, err := ec.queue.Enqueue(ctx, tasks.ExportJournalTask{Path: path, UserID: userID})
		if err != nil {
			respondInternalError(c, err, "enqueue export")
			return
		}
		respondAccepted(c, "export queued", gin.H{"task_id": taskID, "path": path})
		return
	}

	if ec.exporter == nil {
		respondError(c, http.StatusServiceUnavailable, "exporter not configured")
		return
	}
	result, err := ec.exporter.ExportAll(path)
	if ec.events != nil {
		ec.events.LogExport(userID, path, result.EntriesProcessed, err)
	}
	if err != nil {
		respondDomainError(c, err, "export journal")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSchedule handles GET /api/export/schedule
func (ec *ExportController) GetSchedule(c *gin.Context) {
	resp := gin.H{
		"export_dir": ec.exportDir,
		"running":    false,
		"next_run":   nil,
	}
	if ec.schedule != nil {
		resp["running"] = ec.schedule.IsRunning()
		if next := ec.schedule.NextRun(); next != nil {
			resp["next_run"] = next.Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// exportPath keeps exports inside the export directory: only a bare file name is accepted.
func (ec *ExportController) exportPath(c *gin.Context, filename string) (string, bool) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return tasks.DatedExportPath(ec.exportDir, ec.now()), true
	}
	if filename != filepath.Base(filename) || filename == "." || filename == ".." {
		respondBadRequest(c, "filename must not contain a path")
		return "", false
	}
	return filepath.Join(ec.exportDir, utils.ExportFilename(filename)), true
}
