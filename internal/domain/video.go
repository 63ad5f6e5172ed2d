package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Video is an uploaded source file registered to one user.
type Video struct {
	ID           string
	UserID       int64
	Username     string
	OriginalName string
	Filename     string
	Size         int64
	MimeType     string
	UploadedAt   time.Time
}

func NewVideo(owner *User, originalName, mimeType string, size int64, now time.Time) *Video {
	return &Video{
		ID:           uuid.NewString(),
		UserID:       owner.ID,
		Username:     owner.Username,
		OriginalName: originalName,
		Filename:     StoredUploadName(originalName, now),
		Size:         size,
		MimeType:     mimeType,
		UploadedAt:   now.UTC(),
	}
}

func (v *Video) OwnedBy(userID int64) bool {
	return v.UserID == userID
}

var videoExts = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".webm": true,
	".mkv": true, ".m4v": true, ".wmv": true, ".flv": true,
}

func IsVideoExtension(filename string) bool {
	return videoExts[strings.ToLower(filepath.Ext(filename))]
}
