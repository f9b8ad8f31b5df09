package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/journal/internal/entities"
)

type AuditController struct {
	events AuditReader
}

func NewAuditController(events AuditReader) *AuditController {
	return &AuditController{
		events: events,
	}
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit?page=1&limit=25&type=save
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	userID := GetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit := parseQueryInt(c, "limit", 25, 100)

	eventType := c.Query("type")
	offset := (page - 1) * limit

	var events []entities.AuditEvent
	var total int64
	var err error

	if eventType != "" {
		if !isKnownEventType(eventType) {
			respondBadRequest(c, "unknown event type: "+eventType)
			return
		}
		events, total, err = ac.events.GetEventsByType(entities.AuditEventType(eventType), userID, limit, offset)
	} else {
		events, total, err = ac.events.GetEvents(userID, limit, offset)
	}

	if err != nil {
		respondInternalError(c, err, "audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Page:       page,
		Limit:      limit,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: totalPages,
	})
}

func isKnownEventType(value string) bool {
	switch entities.AuditEventType(value) {
	case entities.AuditEventSave,
		entities.AuditEventDelete,
		entities.AuditEventExport,
		entities.AuditEventAuth,
		entities.AuditEventCleanup:
		return true
	}
	return false
}
