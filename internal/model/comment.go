package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentStatus represents the moderation status of a comment.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusDenied   CommentStatus = "denied"
)

// Valid reports whether the status is one of the allowed values.
func (s CommentStatus) Valid() bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusDenied:
		return true
	}
	return false
}

// Comment represents a comment left on an article by a registered user.
// Comments always reference a User; the notification on approval is
// addressed to that user's email.
type Comment struct {
	ID        uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	Body      string        `json:"body" gorm:"type:text"`
	Status    CommentStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ArticleID uuid.UUID     `json:"article_id" gorm:"type:char(36);not null;index"`
	UserID    uuid.UUID     `json:"user_id" gorm:"type:char(36);not null;index"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Relations
	Article *Article `json:"-" gorm:"foreignKey:ArticleID"`
	User    *User    `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID and the default status before creating the record.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CommentStatusPending
	}
	return nil
}
