package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/port"
)

// VideoRegistry exposes the video queries of a Store under the
// port.VideoRegistry method names, which overlap with the job methods.
type VideoRegistry struct {
	s *Store
}

func (s *Store) Videos() *VideoRegistry {
	return &VideoRegistry{s: s}
}

const videoColumns = `id, user_id, username, original_name, filename, size, mimetype, uploaded_at`

func (r *VideoRegistry) Create(ctx context.Context, v *domain.Video) error {
	_, err := r.s.exec(ctx, `INSERT INTO videos (`+videoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, v.Username, v.OriginalName, v.Filename, v.Size, v.MimeType,
		toStoreTime(v.UploadedAt))
	if err != nil {
		if isDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (r *VideoRegistry) FindByID(ctx context.Context, id string, userID int64) (*domain.Video, error) {
	row := r.s.queryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ? AND user_id = ?`, id, userID)
	return scanVideo(row)
}

func (r *VideoRegistry) FindByFilename(ctx context.Context, filename string, userID int64) (*domain.Video, error) {
	row := r.s.queryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE filename = ? AND user_id = ?`, filename, userID)
	return scanVideo(row)
}

func (r *VideoRegistry) ListByUser(ctx context.Context, userID int64) ([]*domain.Video, error) {
	rows, err := r.s.query(ctx, `SELECT `+videoColumns+` FROM videos
		WHERE user_id = ? ORDER BY uploaded_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	videos := []*domain.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

func (r *VideoRegistry) Delete(ctx context.Context, id string, userID int64) error {
	res, err := r.s.exec(ctx, `DELETE FROM videos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanVideo(row rowScanner) (*domain.Video, error) {
	var (
		v          domain.Video
		uploadedAt int64
	)
	err := row.Scan(&v.ID, &v.UserID, &v.Username, &v.OriginalName, &v.Filename, &v.Size, &v.MimeType, &uploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan video: %w", err)
	}
	v.UploadedAt = fromStoreTime(uploadedAt)
	return &v, nil
}

var _ port.VideoRegistry = (*VideoRegistry)(nil)
