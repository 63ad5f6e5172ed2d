package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/port"
)

// CreateUser inserts a user and returns it with its assigned id.
// A taken username returns domain.ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	now := time.Now().UTC()
	var id int64
	err := s.queryRow(ctx, `INSERT INTO users (username, password_hash, created_at)
		VALUES (?, ?, ?) RETURNING id`, username, passwordHash, toStoreTime(now)).Scan(&id)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &domain.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    fromStoreTime(toStoreTime(now)),
	}, nil
}

func (s *Store) GetUser(ctx context.Context, username string) (*domain.User, error) {
	row := s.queryRow(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.queryRow(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := s.exec(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u         domain.User
		createdAt int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = fromStoreTime(createdAt)
	return &u, nil
}

var _ port.UserStore = (*Store)(nil)
