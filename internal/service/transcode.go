package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/infrastructure/logger"
	"github.com/bairigao/video-transcoding/internal/metrics"
	"github.com/bairigao/video-transcoding/internal/port"
)

// InterruptedMessage is recorded on jobs whose process was lost because the
// server stopped while they were running.
const InterruptedMessage = "interrupted: server restarted before conversion finished"

type TranscodeConfig struct {
	AllowedFormats []domain.Format
	UploadsDir     string
	TranscodedDir  string
	// StoreTimeout bounds the status write made when a conversion ends.
	StoreTimeout time.Duration
}

// TranscodeService creates transcode jobs, hands them to the Transcoder and
// records their outcome.
type TranscodeService struct {
	jobs     port.JobStore
	videos   port.VideoRegistry
	driver   port.Transcoder
	cfg      TranscodeConfig
	progress *progressTable
	caps     capabilitiesCache
	wg       sync.WaitGroup
	now      func() time.Time
	newID    func() string
}

func NewTranscodeService(jobs port.JobStore, videos port.VideoRegistry, driver port.Transcoder, cfg TranscodeConfig) *TranscodeService {
	if len(cfg.AllowedFormats) == 0 {
		cfg.AllowedFormats = domain.DefaultFormats
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 10 * time.Second
	}
	return &TranscodeService{
		jobs:     jobs,
		videos:   videos,
		driver:   driver,
		cfg:      cfg,
		progress: newProgressTable(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *TranscodeService) AllowedFormats() []domain.Format {
	return s.cfg.AllowedFormats
}

// RequestTranscode starts converting videoID to format for requesterID and
// returns the new job, still processing, once the process has been spawned.
func (s *TranscodeService) RequestTranscode(ctx context.Context, videoID, format string, requesterID int64) (*domain.TranscodeJob, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" || strings.TrimSpace(format) == "" {
		return nil, domain.NewValidationError("", "videoId and format are required")
	}
	target, err := domain.ParseFormat(format, s.cfg.AllowedFormats)
	if err != nil {
		return nil, err
	}

	video, err := s.videos.FindByID(ctx, videoID, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("video %s: %w", videoID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find video: %w", err)
	}

	inputPath := filepath.Join(s.cfg.UploadsDir, video.Filename)
	if _, err := os.Stat(inputPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("video file %s: %w", video.Filename, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat video file: %w", err)
	}

	existing, err := s.jobs.ListByVideo(ctx, video.ID, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list jobs for video: %w", err)
	}
	for _, j := range existing {
		if j.IsInFlight() && j.Format == target {
			return nil, &domain.ConflictError{JobID: j.ID}
		}
	}

	now := s.now().UTC()
	outputName := domain.OutputFilename(video.Filename, target, now)
	job := &domain.TranscodeJob{
		ID:             s.newID(),
		VideoID:        video.ID,
		UserID:         requesterID,
		InputPath:      inputPath,
		OutputPath:     filepath.Join(s.cfg.TranscodedDir, outputName),
		OutputFilename: outputName,
		Format:         target,
		Status:         domain.JobStatusProcessing,
		CreatedAt:      now,
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, s.conflictAfterRace(ctx, video.ID, target, requesterID, err)
		}
		return nil, fmt.Errorf("create job: %w", err)
	}

	handle, err := s.driver.Start(ctx, job)
	if err != nil {
		metrics.JobStartFailed(string(target))
		s.recordStartFailure(job, err)
		return nil, &domain.ProcessStartError{JobID: job.ID, Err: err}
	}

	metrics.JobStarted(string(target))
	logger.Info.Printf("job %s: transcoding video %s to %s", job.ID, video.ID, target)

	s.wg.Add(1)
	go s.watch(job, handle)

	return job, nil
}

// conflictAfterRace resolves a lost conditional insert into the conflict
// naming the job that won.
func (s *TranscodeService) conflictAfterRace(ctx context.Context, videoID string, format domain.Format, requesterID int64, cause error) error {
	winner, err := s.jobs.FindInFlight(ctx, videoID, format, requesterID)
	if err != nil {
		return fmt.Errorf("create job: %w", cause)
	}
	return &domain.ConflictError{JobID: winner.ID}
}

func (s *TranscodeService) recordStartFailure(job *domain.TranscodeJob, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.StoreTimeout)
	defer cancel()

	msg := cause.Error()
	job.Status = domain.JobStatusFailed
	job.ErrorMessage = msg
	if err := s.jobs.UpdateStatus(ctx, domain.Failed(job.ID, msg)); err != nil {
		logger.Error.Printf("job %s: failed to record start failure: %v", job.ID, err)
		return
	}
	logger.Warn.Printf("job %s: conversion did not start: %v", job.ID, cause)
}

// watch records progress and then the single terminal status of job.
func (s *TranscodeService) watch(job *domain.TranscodeJob, h *port.Handle) {
	defer s.wg.Done()
	defer s.progress.delete(job.ID)

	for p := range h.Progress() {
		s.progress.set(job.ID, p)
		logger.Debug.Printf("job %s: %d%%", job.ID, p)
	}

	res, ok := <-h.Done()
	if !ok {
		res = port.Result{Err: errors.New("conversion ended without reporting a result")}
	}
	if res.FinishedAt.IsZero() {
		res.FinishedAt = s.now()
	}

	update := domain.Completed(job.ID, res.FinishedAt)
	if res.Err != nil {
		update = domain.Failed(job.ID, res.Err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.StoreTimeout)
	defer cancel()

	err := s.jobs.UpdateStatus(ctx, update)
	switch {
	case err == nil:
		if res.Err != nil {
			logger.Warn.Printf("job %s: conversion failed: %v", job.ID, res.Err)
		} else {
			logger.Info.Printf("job %s: conversion completed", job.ID)
		}
	case errors.Is(err, domain.ErrNotFound):
		logger.Info.Printf("job %s: finished after its row was deleted", job.ID)
	case errors.Is(err, domain.ErrInvalidTransition):
		logger.Warn.Printf("job %s: already terminal, dropping %s", job.ID, update.Status)
	default:
		logger.Error.Printf("job %s: failed to record %s: %v", job.ID, update.Status, err)
	}

	metrics.JobFinished(string(job.Format), string(update.Status), res.FinishedAt.Sub(job.CreatedAt))
}

// ListJobs returns the requester's jobs newest first with the name of
// their source video, or DeletedVideoName when it is gone.
func (s *TranscodeService) ListJobs(ctx context.Context, requesterID int64) ([]*domain.JobListing, error) {
	jobs, err := s.jobs.ListByUser(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	sources := make(map[string]*domain.Video)
	listings := make([]*domain.JobListing, 0, len(jobs))
	for _, j := range jobs {
		v, seen := sources[j.VideoID]
		if !seen {
			v, err = s.videos.FindByID(ctx, j.VideoID, requesterID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("find video %s: %w", j.VideoID, err)
			}
			sources[j.VideoID] = v
		}

		l := &domain.JobListing{TranscodeJob: *j, OriginalVideoName: domain.DeletedVideoName}
		if v != nil {
			l.OriginalVideoName = v.OriginalName
			l.OriginalFilename = v.Filename
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// JobProgress is a job with its last reported percentage while it runs.
type JobProgress struct {
	*domain.TranscodeJob
	Progress    int
	HasProgress bool
}

// GetJobStatus returns the requester's job. A job owned by someone else is
// reported as domain.ErrNotFound, same as a missing one.
func (s *TranscodeService) GetJobStatus(ctx context.Context, jobID string, requesterID int64) (*JobProgress, error) {
	job, err := s.jobs.GetByID(ctx, jobID, requesterID)
	if err != nil {
		return nil, err
	}
	out := &JobProgress{TranscodeJob: job}
	if job.IsInFlight() {
		out.Progress, out.HasProgress = s.progress.get(job.ID)
	}
	return out, nil
}

// DeleteJob removes the job's output file, if any, and then its row. The
// source video is untouched. A running process is not stopped.
func (s *TranscodeService) DeleteJob(ctx context.Context, jobID string, requesterID int64) error {
	job, err := s.jobs.GetByID(ctx, jobID, requesterID)
	if err != nil {
		return err
	}

	if err := removeIfExists(job.OutputPath); err != nil {
		logger.Warn.Printf("job %s: could not remove output file: %v", job.ID, err)
	}

	if err := s.jobs.Delete(ctx, job.ID, requesterID); err != nil {
		return err
	}
	logger.Info.Printf("job %s: deleted", job.ID)
	return nil
}

// DownloadTranscoded returns the requester's completed job whose output
// file is named filename, provided the file is still on disk.
func (s *TranscodeService) DownloadTranscoded(ctx context.Context, filename string, requesterID int64) (*domain.TranscodeJob, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return nil, domain.ErrNotFound
	}
	job, err := s.jobs.FindCompletedByFilename(ctx, filename, requesterID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(job.OutputPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("stat output file: %w", err)
	}
	return job, nil
}

// RecoverInterrupted fails jobs left processing by a previous run. Their
// processes died with it, so no terminal event will ever arrive for them.
func (s *TranscodeService) RecoverInterrupted(ctx context.Context) (int64, error) {
	n, err := s.jobs.FailInFlight(ctx, InterruptedMessage)
	if err != nil {
		return 0, fmt.Errorf("recover interrupted jobs: %w", err)
	}
	if n > 0 {
		logger.Warn.Printf("marked %d interrupted job(s) as failed", n)
	}
	return n, nil
}

// Wait blocks until every running conversion has recorded its outcome or
// ctx is done.
func (s *TranscodeService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func removeIfExists(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
