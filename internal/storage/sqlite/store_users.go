package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ebonmoor/questhall/internal/storage"
)

// CreateUser inserts a user record.
func (s *Store) CreateUser(ctx context.Context, user storage.User) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	user.ID = strings.TrimSpace(user.ID)
	if user.ID == "" {
		return fmt.Errorf("user id is required")
	}
	user.Login = strings.TrimSpace(user.Login)
	if user.Login == "" {
		return fmt.Errorf("user login is required")
	}
	if user.PasswordHash == "" {
		return fmt.Errorf("user password hash is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO users (id, login, password_hash, role, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Login,
		user.PasswordHash,
		user.Role,
		timeToUnixMillis(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser loads a user record by id.
func (s *Store) GetUser(ctx context.Context, id string) (storage.User, error) {
	if s == nil || s.sqlDB == nil {
		return storage.User{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.User{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, login, password_hash, role, created_at FROM users WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

// GetUserByLogin loads a user record by login.
func (s *Store) GetUserByLogin(ctx context.Context, login string) (storage.User, error) {
	if s == nil || s.sqlDB == nil {
		return storage.User{}, fmt.Errorf("storage is not configured")
	}
	login = strings.TrimSpace(login)
	if login == "" {
		return storage.User{}, fmt.Errorf("user login is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, login, password_hash, role, created_at FROM users WHERE login = ?`,
		login,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (storage.User, error) {
	var user storage.User
	var createdAt int64
	if err := row.Scan(&user.ID, &user.Login, &user.PasswordHash, &user.Role, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return storage.User{}, storage.ErrNotFound
		}
		return storage.User{}, fmt.Errorf("scan user: %w", err)
	}
	user.CreatedAt = unixMillisToTime(createdAt)
	return user, nil
}
