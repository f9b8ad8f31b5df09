package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Error kinds surfaced by the storage layer. Callers classify with errors.Is.
// A missing row is never an error for lookups; it is a nil result.
var (
	ErrValidation          = errors.New("validation error")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStorage             = errors.New("storage error")
)

// ErrEntryNotFound is returned by updates that target an id which does not exist.
var ErrEntryNotFound = fmt.Errorf("%w: journal entry not found", ErrStorage)

// Validation wraps a message as an ErrValidation.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// MapError classifies a raw gorm or SQLite error. Already classified errors pass through.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrConstraintViolation) || errors.Is(err, ErrStorage) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
	}

	return fmt.Errorf("%w: %v", ErrStorage, err)
}

// IsConstraintViolation reports whether err is (or maps to) a uniqueness failure.
func IsConstraintViolation(err error) bool {
	return errors.Is(MapError(err), ErrConstraintViolation)
}
