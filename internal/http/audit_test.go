package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/journal/internal/audit"
	"github.com/mrlokans/journal/internal/database"
	auditrepo "github.com/mrlokans/journal/internal/database/audit"
	"github.com/mrlokans/journal/internal/entities"
)

func setupAuditRouter(t *testing.T) (*gin.Engine, *audit.Service) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "audit.db"), database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	service := audit.NewService(auditrepo.NewRepository(db.DB))
	router := gin.New()
	router.GET("/api/audit", NewAuditController(service).GetAuditEvents)
	return router, service
}

type auditPage struct {
	Data       []entities.AuditEvent `json:"data"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	HasMore    bool                  `json:"has_more"`
	TotalPages int                   `json:"total_pages"`
}

func TestAuditController_GetAuditEvents(t *testing.T) {
	router, service := setupAuditRouter(t)
	for day := 1; day <= 3; day++ {
		service.LogSave(0, entities.NewDate(2024, 1, day), uint(day), nil)
	}
	service.LogDelete(0, entities.NewDate(2024, 1, 1), true)
	service.LogExport(0, "/tmp/journal.md", 3, fmt.Errorf("disk full"))
	service.Wait()

	t.Run("first page", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/api/audit?limit=2", "")
		require.Equal(t, http.StatusOK, w.Code)

		var page auditPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Len(t, page.Data, 2)
		assert.Equal(t, int64(5), page.Total)
		assert.Equal(t, 3, page.TotalPages)
		assert.True(t, page.HasMore)
	})

	t.Run("last page", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/api/audit?limit=2&page=3", "")
		require.Equal(t, http.StatusOK, w.Code)

		var page auditPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Len(t, page.Data, 1)
		assert.False(t, page.HasMore)
	})

	t.Run("by type", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/api/audit?type=export", "")
		require.Equal(t, http.StatusOK, w.Code)

		var page auditPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		require.Len(t, page.Data, 1)
		assert.Equal(t, entities.AuditStatusFailed, page.Data[0].Status)
		assert.Equal(t, "disk full", page.Data[0].ErrorMsg)
	})

	t.Run("unknown type", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/api/audit?type=import", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuditController_Empty(t *testing.T) {
	router, _ := setupAuditRouter(t)

	w := serve(router, http.MethodGet, "/api/audit", "")
	require.Equal(t, http.StatusOK, w.Code)

	var page auditPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 25, page.Limit)
}
