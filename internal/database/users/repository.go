// Package users provides database operations for local accounts.
//
// Lookups return (nil, nil) when the user does not exist. A duplicate
// username surfaces as database.ErrConstraintViolation.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByUsername("alice")
package users

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser stores a user with already hashed credentials.
func (r *Repository) CreateUser(username, passwordHash string, pinHash *string) (*entities.User, error) {
	if username == "" {
		return nil, database.Validation("username is required")
	}

	user := &entities.User{
		Username:     username,
		PasswordHash: passwordHash,
		PinHash:      pinHash,
		CreatedAt:    entities.NewTimestamp(time.Now()),
	}
	if err := r.db.Create(user).Error; err != nil {
		return nil, database.MapError(err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	return r.first(r.db.Where("id = ?", id), &user)
}

// GetUserByUsername retrieves a user by exact username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	return r.first(r.db.Where("username = ?", username), &user)
}

// UpdatePinHash sets or clears the user's PIN hash.
func (r *Repository) UpdatePinHash(id uint, pinHash *string) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("pin_hash", pinHash)
	if result.Error != nil {
		return database.MapError(result.Error)
	}
	return nil
}

// CountUsers returns the number of stored users.
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	if err := r.db.Model(&entities.User{}).Count(&count).Error; err != nil {
		return 0, database.MapError(err)
	}
	return count, nil
}

func (r *Repository) first(query *gorm.DB, user *entities.User) (*entities.User, error) {
	err := query.First(user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.MapError(err)
	}
	return user, nil
}
