// Package audit records who changed the journal, who exported it and who logged in.
package audit

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/journal/internal/database/audit"
	"github.com/mrlokans/journal/internal/entities"
)

const maxErrorLength = 500

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every event queued with LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogSave records an entry being created or overwritten.
func (s *Service) LogSave(userID uint, date entities.Date, entryID uint, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventSave,
		Action:      "entry_save",
		Description: "Saved entry for " + date.String(),
		EntityType:  "entry",
		Status:      entities.AuditStatusSuccess,
	}
	if entryID > 0 {
		event.EntityID = &entryID
	}
	setFailure(event, err)

	s.LogAsync(event)
}

// LogDelete records an entry deletion. existed is false when the date had no entry.
func (s *Service) LogDelete(userID uint, date entities.Date, existed bool) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventDelete,
		Action:      "entry_delete",
		Description: "Deleted entry for " + date.String(),
		EntityType:  "entry",
		Status:      entities.AuditStatusSuccess,
	}
	if !existed {
		event.Action = "entry_delete_noop"
	}

	s.LogAsync(event)
}

// LogExport records a markdown export.
func (s *Service) LogExport(userID uint, path string, entriesCount int, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventExport,
		Action:      "markdown_export",
		Description: "Exported journal to " + path,
		Status:      entities.AuditStatusSuccess,
	}
	event.Metadata = metadata(map[string]any{"entries_count": entriesCount, "path": path})
	setFailure(event, err)

	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr string, success bool) {
	event := &entities.AuditEvent{
		UserID:     userID,
		EventType:  entities.AuditEventAuth,
		Action:     action,
		EntityType: "user",
		IPAddress:  ipAddr,
		Status:     entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogCleanup records a retention sweep of the audit trail itself.
func (s *Service) LogCleanup(deleted int64, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventCleanup,
		Action:      "audit_cleanup",
		Description: "Removed expired audit events",
		Status:      entities.AuditStatusSuccess,
	}
	event.Metadata = metadata(map[string]any{"deleted": deleted})
	setFailure(event, err)

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(userID, limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, userID, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func setFailure(event *entities.AuditEvent, err error) {
	if err == nil {
		return
	}
	event.Status = entities.AuditStatusFailed
	event.ErrorMsg = truncate(err.Error(), maxErrorLength)
}

func metadata(fields map[string]any) string {
	data, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(data)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
