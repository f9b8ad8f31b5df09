package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/journal/internal/entities"
)

// DriverName is the sqlite3 driver with the journal's SQL functions registered.
const DriverName = "sqlite3_journal"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", CaseFold, true)
		},
	})
}

// CaseFold lowercases s using Unicode case mapping. SQLite's LOWER only folds ASCII.
func CaseFold(s string) string {
	return strings.ToLower(s)
}

// schemaModels are created when missing, in dependency order.
var schemaModels = []any{
	&entities.User{},
	&entities.Entry{},
	&entities.Mood{},
	&entities.Tag{},
	&entities.AuditEvent{},
}

// optionalColumn is a nullable column added after the first release.
// Installations created before it existed get it added in place.
type optionalColumn struct {
	model any
	field string
}

var optionalColumns = []optionalColumn{
	{model: &entities.Entry{}, field: "Category"},
}

type Database struct {
	DB *gorm.DB
}

// Options tweak how the database is opened.
type Options struct {
	LogLevel logger.LogLevel
}

// NewDatabase opens the journal database at dbPath and makes sure its schema is current.
func NewDatabase(dbPath string) (*Database, error) {
	return Open(dbPath, Options{LogLevel: logger.Info})
}

// Open is NewDatabase with explicit options.
func Open(dbPath string, opts Options) (*Database, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	db, err := gorm.Open(sqlite.Dialector{DriverName: DriverName, DSN: dsn(dbPath)}, &gorm.Config{
		Logger: logger.Default.LogMode(opts.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", MapError(err))
	}

	database := &Database{DB: db}

	if err := database.CreateSchemaIfMissing(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

// dsn enables foreign keys on every pooled connection so deletes cascade.
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// CreateSchemaIfMissing creates absent tables and adds absent optional columns.
// It never drops or rewrites existing data and is safe to run on every startup.
func (d *Database) CreateSchemaIfMissing() error {
	migrator := d.DB.Migrator()

	for _, model := range schemaModels {
		if migrator.HasTable(model) {
			continue
		}
		if err := migrator.CreateTable(model); err != nil {
			return MapError(err)
		}
	}

	for _, col := range optionalColumns {
		if migrator.HasColumn(col.model, col.field) {
			continue
		}
		if err := migrator.AddColumn(col.model, col.field); err != nil {
			return MapError(err)
		}
		log.Printf("Added missing column %s", col.field)
	}

	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
