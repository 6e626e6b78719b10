package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxDesignSize is the upload limit for custom design images.
const MaxDesignSize = 5 << 20

var (
	ErrFileTooLarge   = errors.New("file too large")
	ErrUploadInFlight = errors.New("upload already in progress")
)

type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
}

// DesignUploader validates and stores one design image at a time. The
// in-flight guard mirrors the disabled upload control: a second submission
// while one is running is rejected outright.
type DesignUploader struct {
	Store ObjectStore
	Now   func() time.Time

	mu       sync.Mutex
	inFlight bool
}

func (u *DesignUploader) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

// designPath builds a collision-resistant object path: millisecond prefix plus
// a random suffix, keeping the original extension.
func (u *DesignUploader) designPath(filename string) string {
	ext := filepath.Ext(filename)
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("custom-designs/%d-%s%s", u.now().UnixMilli(), suffix, ext)
}

// Upload validates the file, writes it to object storage and returns the
// public URL. Oversized files are rejected before any network call; a failed
// upload leaves no state behind.
func (u *DesignUploader) Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	if len(data) > MaxDesignSize {
		return "", fmt.Errorf("%w: %d bytes, limit is 5MB", ErrFileTooLarge, len(data))
	}

	u.mu.Lock()
	if u.inFlight {
		u.mu.Unlock()
		return "", ErrUploadInFlight
	}
	u.inFlight = true
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.inFlight = false
		u.mu.Unlock()
	}()

	path := u.designPath(filename)
	if err := u.Store.Upload(ctx, path, data, contentType); err != nil {
		return "", err
	}
	return u.Store.PublicURL(path), nil
}
