package asset

import (
	"fmt"
	"time"
)

// Asset is an uploaded image's stored metadata. The binary itself lives in
// blob storage under {salt}.{extension}; rows are immutable once created.
type Asset struct {
	ID        uint   `gorm:"primaryKey"`
	BaseURL   string `gorm:"not null"`
	Salt      string `gorm:"not null"`
	Extension string `gorm:"not null"`
	Width     int
	Height    int
	CreatedAt time.Time
}

// URL is the public location of the uploaded image.
func (a *Asset) URL() string {
	return fmt.Sprintf("%s/%s.%s", a.BaseURL, a.Salt, a.Extension)
}
