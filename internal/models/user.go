// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account. Password holds the bcrypt hash and is
// never serialized. ResetCode and ResetCodeExpiry are either both set or both
// nil; they are cleared together when a password reset completes.
type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"not null" json:"name"`
	Username        string     `gorm:"uniqueIndex;not null" json:"username"`
	Email           string     `gorm:"uniqueIndex;not null" json:"email"`
	Password        string     `gorm:"not null" json:"-"`
	ResetCode       *string    `json:"-"`
	ResetCodeExpiry *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Posts           []Post     `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
