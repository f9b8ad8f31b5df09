// Package audit persists the audit trail of journal writes, exports and logins.
//
// # Usage
//
//	repo := audit.NewRepository(db)
//	events, total, err := repo.GetEvents(0, 50, 0)
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/entities"
)

// DefaultPageSize is used when a non-positive limit is requested.
const DefaultPageSize = 50

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return database.MapError(r.db.Create(event).Error)
}

// GetEvents retrieves paginated audit events, most recent first.
// A userID of 0 returns events of every user.
func (r *Repository) GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return r.page(r.db.Model(&entities.AuditEvent{}), userID, limit, offset)
}

// GetEventsByType retrieves paginated audit events of one type.
func (r *Repository) GetEventsByType(eventType entities.AuditEventType, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return r.page(r.db.Model(&entities.AuditEvent{}).Where("event_type = ?", eventType), userID, limit, offset)
}

func (r *Repository) page(query *gorm.DB, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, database.MapError(err)
	}

	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	events := []entities.AuditEvent{}
	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&events).Error
	if err != nil {
		return nil, 0, database.MapError(err)
	}
	return events, total, nil
}

// DeleteOldEvents removes audit events older than the specified time.
// Returns the number of deleted events.
func (r *Repository) DeleteOldEvents(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, database.MapError(result.Error)
}
