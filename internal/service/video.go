package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/infrastructure/logger"
	"github.com/bairigao/video-transcoding/internal/port"
)

// VideoService manages uploaded source videos.
type VideoService struct {
	videos    port.VideoRegistry
	uploadDir string
	now       func() time.Time
}

func NewVideoService(videos port.VideoRegistry, uploadDir string) *VideoService {
	return &VideoService{
		videos:    videos,
		uploadDir: uploadDir,
		now:       time.Now,
	}
}

// Upload moves file into the uploads directory under a unique name and
// registers it to owner. The caller keeps ownership of file and closes it.
func (s *VideoService) Upload(ctx context.Context, owner *domain.User, originalName, mimeType string, file *os.File) (*domain.Video, error) {
	if originalName == "" {
		return nil, domain.NewValidationError("video", "file name is required")
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		logger.Error.Printf("failed to create upload directory: %v", err)
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat upload: %w", err)
	}

	video := domain.NewVideo(owner, originalName, mimeType, info.Size(), s.now())
	uploadPath := filepath.Join(s.uploadDir, video.Filename)
	if err := moveFile(file, uploadPath); err != nil {
		logger.Error.Printf("failed to save upload %s: %v", logger.SanitizeForLog(originalName), err)
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	if err := s.videos.Create(ctx, video); err != nil {
		_ = os.Remove(uploadPath)
		logger.Error.Printf("failed to save video metadata %s: %v", video.ID, err)
		return nil, fmt.Errorf("failed to save video metadata: %w", err)
	}

	logger.Info.Printf("video uploaded: id=%s, filename=%s, size=%d", video.ID, video.Filename, video.Size)
	return video, nil
}

func (s *VideoService) List(ctx context.Context, ownerID int64) ([]*domain.Video, error) {
	return s.videos.ListByUser(ctx, ownerID)
}

// Delete removes the video file and its record. Transcode jobs made from it
// stay listed and downloadable.
func (s *VideoService) Delete(ctx context.Context, id string, ownerID int64) error {
	video, err := s.videos.FindByID(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if err := removeIfExists(filepath.Join(s.uploadDir, video.Filename)); err != nil {
		logger.Warn.Printf("video %s: could not remove file: %v", video.ID, err)
	}
	if err := s.videos.Delete(ctx, video.ID, ownerID); err != nil {
		return err
	}
	logger.Info.Printf("video deleted: id=%s", video.ID)
	return nil
}

// Original returns the owner's video stored as filename and its path on disk.
func (s *VideoService) Original(ctx context.Context, filename string, ownerID int64) (*domain.Video, string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return nil, "", domain.ErrNotFound
	}
	video, err := s.videos.FindByFilename(ctx, filename, ownerID)
	if err != nil {
		return nil, "", err
	}
	path := filepath.Join(s.uploadDir, video.Filename)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("stat video file: %w", err)
	}
	return video, path, nil
}

// moveFile renames src to dst, copying when they sit on different
// filesystems.
func moveFile(src *os.File, dst string) error {
	if err := os.Rename(src.Name(), dst); err == nil {
		return nil
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	_ = os.Remove(src.Name())
	return nil
}
