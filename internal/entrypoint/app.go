package entrypoint

import (
	"fmt"
	"log"

	"gorm.io/gorm/logger"

	"github.com/mrlokans/journal/internal/analytics"
	"github.com/mrlokans/journal/internal/audit"
	"github.com/mrlokans/journal/internal/config"
	"github.com/mrlokans/journal/internal/database"
	auditrepo "github.com/mrlokans/journal/internal/database/audit"
	"github.com/mrlokans/journal/internal/database/entries"
	"github.com/mrlokans/journal/internal/exporters"
	"github.com/mrlokans/journal/internal/journal"
)

// App holds the journal components shared by the server and the CLI commands.
type App struct {
	DB       *database.Database
	Journal  *journal.Repository
	Stats    *analytics.Engine
	Audit    *audit.Service
	Exporter *exporters.DatabaseExporter
}

// Open connects to the configured database and builds the journal components on top of it.
func Open(cfg *config.Config, level logger.LogLevel) (*App, error) {
	db, err := database.Open(cfg.Database.Path, database.Options{LogLevel: level})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := journal.NewRepository(entries.NewStore(db.DB))
	return &App{
		DB:       db,
		Journal:  repo,
		Stats:    analytics.NewEngine(repo),
		Audit:    audit.NewService(auditrepo.NewRepository(db.DB)),
		Exporter: exporters.NewDatabaseExporter(repo, exporters.NewMarkdownExporter()),
	}, nil
}

// Close flushes pending audit events and closes the database.
func (a *App) Close() {
	a.Audit.Wait()
	if err := a.DB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}
