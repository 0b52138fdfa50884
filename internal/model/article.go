package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article represents a blog post. Title and body carry no not-null
// constraint; the owning user is optional.
type Article struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Title     string     `json:"title" gorm:"size:255"`
	Body      string     `json:"body" gorm:"type:text"`
	UserID    *uuid.UUID `json:"user_id" gorm:"type:char(36);index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relations
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:ArticleID"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// PrettyCreatedAt formats the creation timestamp as MM/DD/YYYY.
func (a *Article) PrettyCreatedAt() string {
	return a.CreatedAt.Format("01/02/2006")
}

// MarshalJSON includes the derived pretty_created_at field in serializations.
func (a Article) MarshalJSON() ([]byte, error) {
	type alias Article
	return json.Marshal(struct {
		alias
		PrettyCreatedAt string `json:"pretty_created_at"`
	}{
		alias:           alias(a),
		PrettyCreatedAt: a.PrettyCreatedAt(),
	})
}
