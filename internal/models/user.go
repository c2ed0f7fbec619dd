package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered user
type User struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Email             string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username          string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	FullName          string         `gorm:"size:200" json:"full_name,omitempty"`
	PasswordHash      string         `gorm:"size:255;not null" json:"-"`
	IsActive          bool           `json:"is_active"`
	ResetToken        string         `gorm:"size:255;index" json:"-"`
	ResetTokenExpires *time.Time     `json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Items []Item `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// HasValidResetToken reports whether the user holds a reset token that has
// not expired at the given instant
func (u *User) HasValidResetToken(now time.Time) bool {
	return u.ResetToken != "" && u.ResetTokenExpires != nil && u.ResetTokenExpires.After(now)
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts the user to its public view
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
