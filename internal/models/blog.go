package models

import (
	"time"
)

// BlogState is the publication state of a blog. The only legal transition is
// draft -> published; there is no unpublish.
type BlogState string

const (
	BlogStateDraft     BlogState = "draft"
	BlogStatePublished BlogState = "published"
)

// Valid reports whether s is a known state.
func (s BlogState) Valid() bool {
	switch s {
	case BlogStateDraft, BlogStatePublished:
		return true
	}
	return false
}

// Blog represents a blog post. Drafts are visible only to their author;
// published blogs are visible to everyone.
type Blog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"uniqueIndex;not null" json:"title"`
	Description string    `json:"description,omitempty"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID" json:"-"`
	// AuthorInfo is not persisted; populated from Author for responses.
	AuthorInfo  *PublicUser `gorm:"-" json:"author,omitempty"`
	State       BlogState   `gorm:"type:varchar(16);not null;default:draft;index" json:"state"`
	ReadCount   int64       `gorm:"not null;default:0" json:"read_count"`
	ReadingTime int         `gorm:"not null;default:1" json:"reading_time"`
	Tags        []string    `gorm:"serializer:json;type:text" json:"tags"`
	Body        string      `gorm:"type:text;not null" json:"body"`
	// Timestamp is the default sort key, fixed at creation.
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
