package auth

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/mrlokans/journal/internal/config"
	"github.com/mrlokans/journal/internal/database"
	"github.com/mrlokans/journal/internal/entities"
)

// Validation patterns
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameRequired = fmt.Errorf("%w: username is required", database.ErrValidation)
	ErrPasswordRequired = fmt.Errorf("%w: password is required", database.ErrValidation)
	ErrUsernameInvalid  = fmt.Errorf("%w: username must be 3-64 characters, alphanumeric and underscore/hyphen only", database.ErrValidation)
	ErrPinRequired      = errors.New("pin is required")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	CreateUser(username, passwordHash string, pinHash *string) (*entities.User, error)
	GetUserByID(id uint) (*entities.User, error)
	GetUserByUsername(username string) (*entities.User, error)
	UpdatePinHash(id uint, pinHash *string) error
	CountUsers() (int64, error)
}

// Service handles authentication and user management.
type Service struct {
	users  UserRepository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(users UserRepository, cfg config.Auth) *Service {
	return &Service{
		users:  users,
		config: cfg,
	}
}

// CreateUser creates a user with a password and an optional PIN.
// It returns false without an error when the username is already taken.
func (s *Service) CreateUser(username, password string, pin *string) (bool, error) {
	if username == "" {
		return false, ErrUsernameRequired
	}
	if password == "" {
		return false, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return false, ErrUsernameInvalid
	}

	existing, err := s.users.GetUserByUsername(username)
	if err != nil {
		return false, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return false, err
	}

	var pinHash *string
	if pin != nil && *pin != "" {
		hash, err := HashPin(*pin, s.config.BcryptCost)
		if err != nil {
			return false, err
		}
		pinHash = &hash
	}

	if _, err := s.users.CreateUser(username, passwordHash, pinHash); err != nil {
		// Lost a race with a concurrent registration of the same name.
		if database.IsConstraintViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	return true, nil
}

// Authenticate returns the user for valid credentials and nil otherwise.
// An error is only returned when the lookup itself fails.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil
	}
	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, nil
	}
	return user, nil
}

// VerifyPin checks pin against the user's PIN. A user without a PIN never verifies.
func (s *Service) VerifyPin(user *entities.User, pin string) bool {
	if user == nil || !user.HasPin() {
		return false
	}
	return CheckPin(pin, *user.PinHash)
}

// SetPin sets the user's PIN, or removes it when pin is empty.
func (s *Service) SetPin(userID uint, pin string) error {
	if pin == "" {
		return s.users.UpdatePinHash(userID, nil)
	}
	hash, err := HashPin(pin, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePinHash(userID, &hash)
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetUserByUsername retrieves a user by exact username.
func (s *Service) GetUserByUsername(username string) (*entities.User, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UserExists reports whether username is taken.
func (s *Service) UserExists(username string) (bool, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// HasUsers returns true if any users exist in the database.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.users.CountUsers()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsAuthEnabled returns true if authentication is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}

// GetAuthMode returns the current authentication mode.
func (s *Service) GetAuthMode() config.AuthMode {
	return s.config.Mode
}
