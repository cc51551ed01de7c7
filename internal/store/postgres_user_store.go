package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"filmrate/internal/domain"
)

// PostgresUserStore implements UserStore for PostgreSQL.
type PostgresUserStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresUserStore(db *sqlx.DB, logger *slog.Logger) *PostgresUserStore {
	return &PostgresUserStore{db: db, logger: logger}
}

func (s *PostgresUserStore) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT id, email, login, name, birthday FROM users ORDER BY id`
	users := []domain.User{}
	if err := s.db.SelectContext(ctx, &users, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT id, email, login, name, birthday FROM users WHERE id = $1`
	var user domain.User
	if err := s.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get user by ID", slog.Int64("userID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) (int64, error) {
	query := `INSERT INTO users (email, login, name, birthday) VALUES ($1, $2, $3, $4) RETURNING id`
	var id int64
	err := s.db.GetContext(ctx, &id, query, user.Email, user.Login, user.Name, user.Birthday)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create user", slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.DebugContext(ctx, "User created", slog.Int64("userID", id))
	return id, nil
}

func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) (bool, error) {
	query := `UPDATE users SET email = $1, login = $2, name = $3, birthday = $4 WHERE id = $5`
	result, err := s.db.ExecContext(ctx, query, user.Email, user.Login, user.Name, user.Birthday, user.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update user", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to update user: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

func (s *PostgresUserStore) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete user", slog.Int64("userID", id), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// PostgresFriendStore implements FriendStore for PostgreSQL.
type PostgresFriendStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresFriendStore(db *sqlx.DB, logger *slog.Logger) *PostgresFriendStore {
	return &PostgresFriendStore{db: db, logger: logger}
}

func (s *PostgresFriendStore) AddFriend(ctx context.Context, userID, friendID int64) (bool, error) {
	query := `INSERT INTO friends (user_id, friend_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	result, err := s.db.ExecContext(ctx, query, userID, friendID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to add friend edge",
			slog.Int64("userID", userID), slog.Int64("friendID", friendID), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to add friend: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

func (s *PostgresFriendStore) RemoveFriend(ctx context.Context, userID, friendID int64) (bool, error) {
	query := `DELETE FROM friends WHERE user_id = $1 AND friend_id = $2`
	result, err := s.db.ExecContext(ctx, query, userID, friendID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove friend edge",
			slog.Int64("userID", userID), slog.Int64("friendID", friendID), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to remove friend: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

func (s *PostgresFriendStore) ListFriends(ctx context.Context, userID int64) ([]domain.User, error) {
	query := `SELECT u.id, u.email, u.login, u.name, u.birthday
              FROM users AS u
              JOIN friends AS f ON u.id = f.friend_id
              WHERE f.user_id = $1
              ORDER BY u.id`
	friends := []domain.User{}
	if err := s.db.SelectContext(ctx, &friends, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list friends", slog.Int64("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return friends, nil
}

// ListCommonFriends intersects the outgoing friend sets of the two users
// through a double self-join on the friends table.
func (s *PostgresFriendStore) ListCommonFriends(ctx context.Context, userID, otherID int64) ([]domain.User, error) {
	query := `SELECT u.id, u.email, u.login, u.name, u.birthday
              FROM users AS u
              JOIN friends AS f1 ON u.id = f1.friend_id
              JOIN friends AS f2 ON f1.friend_id = f2.friend_id
              WHERE f1.user_id = $1 AND f2.user_id = $2
              ORDER BY u.id`
	common := []domain.User{}
	if err := s.db.SelectContext(ctx, &common, query, userID, otherID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list common friends",
			slog.Int64("userID", userID), slog.Int64("otherID", otherID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list common friends: %w", err)
	}
	return common, nil
}
