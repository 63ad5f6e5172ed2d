package port

import (
	"context"

	"github.com/bairigao/video-transcoding/internal/domain"
)

// JobStore persists transcode jobs. Every read and delete is scoped to the
// owning user; UpdateStatus is the internal completion path and is not.
type JobStore interface {
	Create(ctx context.Context, job *domain.TranscodeJob) error
	GetByID(ctx context.Context, id string, userID int64) (*domain.TranscodeJob, error)
	FindInFlight(ctx context.Context, videoID string, format domain.Format, userID int64) (*domain.TranscodeJob, error)
	ListByVideo(ctx context.Context, videoID string, userID int64) ([]*domain.TranscodeJob, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.TranscodeJob, error)
	FindCompletedByFilename(ctx context.Context, filename string, userID int64) (*domain.TranscodeJob, error)
	UpdateStatus(ctx context.Context, update domain.JobStatusUpdate) error
	FailInFlight(ctx context.Context, message string) (int64, error)
	Delete(ctx context.Context, id string, userID int64) error
}

type VideoRegistry interface {
	Create(ctx context.Context, video *domain.Video) error
	FindByID(ctx context.Context, id string, userID int64) (*domain.Video, error)
	FindByFilename(ctx context.Context, filename string, userID int64) (*domain.Video, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Video, error)
	Delete(ctx context.Context, id string, userID int64) error
}

type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error)
	GetUser(ctx context.Context, username string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}
