package post

import (
	"time"
)

// Post is a single lost-item or found-item report. Posts are created and
// deleted, never updated in place.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"not null" json:"description"`
	IsFound     bool      `gorm:"not null" json:"is_found"`
	UserID      uint      `gorm:"not null" json:"user_id"`
	Timestamp   time.Time `gorm:"not null" json:"timestamp"`
	ImageURL    *string   `json:"image_url,omitempty"`
}
