package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/stockroom-api/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository handles user data access
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	result := r.db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	result := r.db.Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	result := r.db.Where("username = ?", username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// GetByResetToken retrieves a user by password reset token
func (r *UserRepository) GetByResetToken(token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	var user models.User
	result := r.db.Where("reset_token = ?", token).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// ExistsByEmail reports whether a user with the email exists
func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// ExistsByUsername reports whether a user with the username exists
func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// SetResetToken stores a reset token and its expiry on the user
func (r *UserRepository) SetResetToken(user *models.User, token string, expiresAt time.Time) error {
	user.ResetToken = token
	user.ResetTokenExpires = &expiresAt
	return r.db.Save(user).Error
}

// ClearResetToken removes the reset token from the user
func (r *UserRepository) ClearResetToken(user *models.User) error {
	user.ResetToken = ""
	user.ResetTokenExpires = nil
	return r.db.Save(user).Error
}

// UpdatePassword replaces the user's password hash
func (r *UserRepository) UpdatePassword(user *models.User, passwordHash string) error {
	user.PasswordHash = passwordHash
	return r.db.Save(user).Error
}

// ClearExpiredResetTokens removes reset tokens whose expiry is in the past.
// It returns the number of users swept.
func (r *UserRepository) ClearExpiredResetTokens(now time.Time) (int64, error) {
	result := r.db.Model(&models.User{}).
		Where("reset_token <> '' AND reset_token_expires IS NOT NULL AND reset_token_expires < ?", now).
		Updates(map[string]interface{}{
			"reset_token":         "",
			"reset_token_expires": nil,
			"updated_at":          time.Now(),
		})
	return result.RowsAffected, result.Error
}
