package models

import (
	"time"
)

// Post represents a feed entry. Photos are ordered by position and replaced
// wholesale on update; comments are append-only; likes live in a join table
// with a composite unique key so toggling is an atomic row insert/delete.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Photos    []Photo   `gorm:"foreignKey:PostID" json:"photos,omitempty"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool      `gorm:"->;-:migration" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Photo is an opaque image blob attached to a post.
type Photo struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	Position int    `gorm:"not null" json:"position"`
	Data     []byte `gorm:"type:bytea;not null" json:"data"`
}

// Like records that a user liked a post. The composite unique index is what
// makes the like toggle an atomic set operation.
type Like struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
