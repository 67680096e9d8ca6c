package asset

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"gorm.io/gorm"
)

var (
	// ErrInvalidImage covers malformed data URIs and undecodable payloads.
	ErrInvalidImage = errors.New("invalid base64 image data")
	// ErrUnsupportedFormat is returned for any MIME type outside the allow-list.
	ErrUnsupportedFormat = errors.New("image format must be png, jpg or jpeg")
	// ErrStorage is returned when the blob store rejects the upload.
	ErrStorage = errors.New("image storage failed")
)

var allowedExtensions = map[string]string{
	"image/png":  "png",
	"image/jpg":  "jpg",
	"image/jpeg": "jpeg",
}

const saltLength = 16
const saltChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// BlobStore is the slice of S3 the uploader needs.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

type Uploader struct {
	db      *gorm.DB
	store   BlobStore
	baseURL string
}

func NewUploader(db *gorm.DB, store BlobStore, baseURL string) *Uploader {
	return &Uploader{db: db, store: store, baseURL: baseURL}
}

// Create validates and decodes a base64 image data URI, uploads the binary
// to blob storage under a fresh {salt}.{extension} key and persists the
// Asset row. Any decode, validation or storage failure aborts with an
// explicit error; no partial Asset is ever written.
func (u *Uploader) Create(ctx context.Context, dataURI string) (*Asset, error) {
	mediaType, payload, err := splitDataURI(dataURI)
	if err != nil {
		return nil, err
	}

	ext, ok := allowedExtensions[mediaType]
	if !ok {
		return nil, fmt.Errorf("%w (got %s)", ErrUnsupportedFormat, mediaType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	salt, err := newSalt()
	if err != nil {
		return nil, err
	}

	key := salt + "." + ext
	if err := u.store.Put(ctx, key, contentTypeFor(ext), data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	record := Asset{
		BaseURL:   u.baseURL,
		Salt:      salt,
		Extension: ext,
		Width:     cfg.Width,
		Height:    cfg.Height,
		CreatedAt: time.Now(),
	}
	if err := u.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("saving asset: %w", err)
	}
	return &record, nil
}

func splitDataURI(dataURI string) (mediaType, payload string, err error) {
	rest, found := strings.CutPrefix(dataURI, "data:")
	if !found {
		return "", "", fmt.Errorf("%w: missing data URI prefix", ErrInvalidImage)
	}
	mediaType, payload, found = strings.Cut(rest, ";base64,")
	if !found || payload == "" {
		return "", "", fmt.Errorf("%w: not base64 encoded", ErrInvalidImage)
	}
	return mediaType, payload, nil
}

func contentTypeFor(ext string) string {
	if ext == "png" {
		return "image/png"
	}
	return "image/jpeg"
}

func newSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	for i, b := range buf {
		buf[i] = saltChars[int(b)%len(saltChars)]
	}
	return string(buf), nil
}
