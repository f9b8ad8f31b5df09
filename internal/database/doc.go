// Package database provides the data access layer for the journal.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, schema creation, additive column migration
//	├── errors.go        # Error taxonomy (validation, constraint violation, storage)
//	├── entries/         # Entry Store: journal entries with their moods and tags
//	├── users/           # User accounts
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
// Each sub-package provides a Store or Repository type over a shared *gorm.DB:
//
//	db, err := database.NewDatabase("./journal.db")
//
//	store := entries.NewStore(db.DB)
//	usersRepo := users.NewRepository(db.DB)
//
//	entry, err := store.GetEntryByDate(entities.Today())
//
// # Schema Evolution
//
// CreateSchemaIfMissing creates absent tables and then adds any optional column
// listed in optionalColumns that an older installation lacks. Nothing else is
// migrated: columns are never dropped or retyped.
//
// # Errors
//
// Sub-packages return errors already passed through MapError, so callers can
// use errors.Is against ErrValidation, ErrConstraintViolation and ErrStorage.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register the model in schemaModels
//  5. Add compile-time interface check in internal/interfaces
package database
