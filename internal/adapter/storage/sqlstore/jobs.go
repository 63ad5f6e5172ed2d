package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/port"
)

const jobColumns = `id, video_id, user_id, input_path, output_path, output_filename,
	format, status, error_message, created_at, completed_at`

// Create inserts a new job. A second processing job for the same video and
// format violates uq_transcode_jobs_in_flight and returns domain.ErrDuplicate.
func (s *Store) Create(ctx context.Context, job *domain.TranscodeJob) error {
	var errMsg sql.NullString
	if job.ErrorMessage != "" {
		errMsg = sql.NullString{String: job.ErrorMessage, Valid: true}
	}
	_, err := s.exec(ctx, `INSERT INTO transcode_jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.VideoID, job.UserID, job.InputPath, job.OutputPath, job.OutputFilename,
		string(job.Format), string(job.Status), errMsg,
		toStoreTime(job.CreatedAt), toNullStoreTime(job.CompletedAt),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transcode job: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string, userID int64) (*domain.TranscodeJob, error) {
	row := s.queryRow(ctx, `SELECT `+jobColumns+` FROM transcode_jobs
		WHERE id = ? AND user_id = ?`, id, userID)
	return scanJob(row)
}

func (s *Store) FindInFlight(ctx context.Context, videoID string, format domain.Format, userID int64) (*domain.TranscodeJob, error) {
	row := s.queryRow(ctx, `SELECT `+jobColumns+` FROM transcode_jobs
		WHERE video_id = ? AND format = ? AND user_id = ? AND status = 'processing'`,
		videoID, string(format), userID)
	return scanJob(row)
}

func (s *Store) ListByVideo(ctx context.Context, videoID string, userID int64) ([]*domain.TranscodeJob, error) {
	rows, err := s.query(ctx, `SELECT `+jobColumns+` FROM transcode_jobs
		WHERE video_id = ? AND user_id = ?
		ORDER BY created_at DESC, id DESC`, videoID, userID)
	if err != nil {
		return nil, fmt.Errorf("list jobs by video: %w", err)
	}
	return scanJobs(rows)
}

func (s *Store) ListByUser(ctx context.Context, userID int64) ([]*domain.TranscodeJob, error) {
	rows, err := s.query(ctx, `SELECT `+jobColumns+` FROM transcode_jobs
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list jobs by user: %w", err)
	}
	return scanJobs(rows)
}

func (s *Store) FindCompletedByFilename(ctx context.Context, filename string, userID int64) (*domain.TranscodeJob, error) {
	row := s.queryRow(ctx, `SELECT `+jobColumns+` FROM transcode_jobs
		WHERE output_filename = ? AND user_id = ? AND status = 'completed'`, filename, userID)
	return scanJob(row)
}

// UpdateStatus applies the terminal transition of a processing job. A job
// that already reached a terminal status is left untouched and
// domain.ErrInvalidTransition is returned.
func (s *Store) UpdateStatus(ctx context.Context, u domain.JobStatusUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if !u.Status.IsTerminal() {
		return domain.NewValidationError("status", "jobs can only move to completed or failed")
	}

	var errMsg sql.NullString
	if u.Status == domain.JobStatusFailed && u.ErrorMessage != nil {
		errMsg = sql.NullString{String: *u.ErrorMessage, Valid: true}
	}
	var completedAt sql.NullInt64
	if u.Status == domain.JobStatusCompleted {
		completedAt = toNullStoreTime(u.CompletedAt)
	}

	res, err := s.exec(ctx, `UPDATE transcode_jobs
		SET status = ?, error_message = ?, completed_at = ?
		WHERE id = ? AND status = 'processing'`,
		string(u.Status), errMsg, completedAt, u.ID)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if n > 0 {
		return nil
	}

	var one int
	err = s.queryRow(ctx, `SELECT 1 FROM transcode_jobs WHERE id = ?`, u.ID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check job: %w", err)
	}
	return domain.ErrInvalidTransition
}

// FailInFlight marks every processing job failed with message and reports
// how many rows changed.
func (s *Store) FailInFlight(ctx context.Context, message string) (int64, error) {
	res, err := s.exec(ctx, `UPDATE transcode_jobs
		SET status = 'failed', error_message = ?
		WHERE status = 'processing'`, message)
	if err != nil {
		return 0, fmt.Errorf("fail in-flight jobs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, id string, userID int64) error {
	res, err := s.exec(ctx, `DELETE FROM transcode_jobs WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transcode job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transcode job: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.TranscodeJob, error) {
	var (
		job         domain.TranscodeJob
		format      string
		status      string
		errMsg      sql.NullString
		createdAt   int64
		completedAt sql.NullInt64
	)
	err := row.Scan(&job.ID, &job.VideoID, &job.UserID, &job.InputPath, &job.OutputPath,
		&job.OutputFilename, &format, &status, &errMsg, &createdAt, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan transcode job: %w", err)
	}
	job.Format = domain.Format(format)
	job.Status = domain.JobStatus(status)
	job.ErrorMessage = errMsg.String
	job.CreatedAt = fromStoreTime(createdAt)
	job.CompletedAt = fromNullStoreTime(completedAt)
	return &job, nil
}

func scanJobs(rows *sql.Rows) ([]*domain.TranscodeJob, error) {
	defer rows.Close() //nolint:errcheck

	jobs := []*domain.TranscodeJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcode jobs: %w", err)
	}
	return jobs, nil
}

var _ port.JobStore = (*Store)(nil)
