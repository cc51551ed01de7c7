package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"filmrate/internal/domain"
	"filmrate/internal/store"
)

// UserService implements user and friendship operations on top of the user
// and friend storage ports. It is stateless; all state lives in storage.
// The popular cache is invalidated on user removal because the cascade
// deletes the user's likes, changing film rates; nil disables caching.
type UserService struct {
	users    store.UserStore
	friends  store.FriendStore
	popular  PopularCache
	validate *validator.Validate
	logger   *slog.Logger
}

func NewUserService(users store.UserStore, friends store.FriendStore, popular PopularCache, validate *validator.Validate, logger *slog.Logger) *UserService {
	return &UserService{
		users:    users,
		friends:  friends,
		popular:  popular,
		validate: validate,
		logger:   logger,
	}
}

func (s *UserService) GetAll(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Add validates and persists a new user, then reads the persisted record
// back so the caller sees the storage-assigned id and any storage-side
// normalization.
func (s *UserService) Add(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.validateUser(ctx, user); err != nil {
		return nil, err
	}
	defaultNameToLogin(user)

	id, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	created, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, &CreateFailedError{Entity: EntityUser, ID: id}
		}
		return nil, err
	}
	s.logger.DebugContext(ctx, "Added user", slog.Int64("userID", created.ID), slog.String("login", created.Login))
	return created, nil
}

// Update replaces the whole user record. It never creates: an unmatched id
// is a NotFoundError.
func (s *UserService) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.validateUser(ctx, user); err != nil {
		return nil, err
	}
	defaultNameToLogin(user)

	matched, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, &NotFoundError{Entity: EntityUser, ID: user.ID}
	}
	updated, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, &CreateFailedError{Entity: EntityUser, ID: user.ID}
		}
		return nil, err
	}
	s.logger.DebugContext(ctx, "Updated user", slog.Int64("userID", updated.ID))
	return updated, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, &NotFoundError{Entity: EntityUser, ID: id}
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Remove(ctx context.Context, id int64) error {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return &NotFoundError{Entity: EntityUser, ID: id}
	}
	// Deleting the user cascades their likes away, so cached rankings
	// computed from the old like counts are stale.
	if s.popular != nil {
		s.popular.Invalidate(ctx)
	}
	s.logger.DebugContext(ctx, "Removed user", slog.Int64("userID", id))
	return nil
}

// AddToFriends inserts the directed edge userID -> friendID. Both ids must
// exist; re-adding an existing edge is not an error.
func (s *UserService) AddToFriends(ctx context.Context, userID, friendID int64) error {
	if err := s.checkUserExists(ctx, userID); err != nil {
		return err
	}
	if err := s.checkUserExists(ctx, friendID); err != nil {
		return err
	}
	if _, err := s.friends.AddFriend(ctx, userID, friendID); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "Added friend edge", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

// RemoveFromFriends deletes the edge if present; edge absence is not an
// error, only a missing user is.
func (s *UserService) RemoveFromFriends(ctx context.Context, userID, friendID int64) error {
	if err := s.checkUserExists(ctx, userID); err != nil {
		return err
	}
	if err := s.checkUserExists(ctx, friendID); err != nil {
		return err
	}
	if _, err := s.friends.RemoveFriend(ctx, userID, friendID); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "Removed friend edge", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

func (s *UserService) GetFriends(ctx context.Context, userID int64) ([]domain.User, error) {
	if err := s.checkUserExists(ctx, userID); err != nil {
		return nil, err
	}
	return s.friends.ListFriends(ctx, userID)
}

// GetCommonFriends intersects the outgoing friend sets of the two users.
// Friendship is directed, so this is not a "mutual friends" query: a user
// appears when both subjects point an edge at them.
func (s *UserService) GetCommonFriends(ctx context.Context, userID, otherID int64) ([]domain.User, error) {
	if err := s.checkUserExists(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.checkUserExists(ctx, otherID); err != nil {
		return nil, err
	}
	return s.friends.ListCommonFriends(ctx, userID, otherID)
}

func (s *UserService) checkUserExists(ctx context.Context, id int64) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return &NotFoundError{Entity: EntityUser, ID: id}
		}
		return err
	}
	return nil
}

func (s *UserService) validateUser(ctx context.Context, user *domain.User) error {
	if err := s.validate.StructCtx(ctx, user); err != nil {
		return asValidationError(err)
	}
	if strings.ContainsFunc(user.Login, unicode.IsSpace) {
		return &ValidationError{Field: "login", Reason: "must not contain whitespace"}
	}
	// Compare dates, not instants: a birthday of today is valid regardless
	// of the wall clock.
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !user.Birthday.IsZero() && user.Birthday.After(today) {
		return &ValidationError{Field: "birthday", Reason: "must not be in the future"}
	}
	return nil
}

// defaultNameToLogin applies the name fallback before persisting, so a
// blank display name is never stored.
func defaultNameToLogin(user *domain.User) {
	if strings.TrimSpace(user.Name) == "" {
		user.Name = user.Login
	}
}

// asValidationError converts the first validator failure into the service's
// ValidationError; anything else passes through unchanged.
func asValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Field:  strings.ToLower(fe.Field()),
			Reason: fmt.Sprintf("failed '%s' constraint", fe.Tag()),
		}
	}
	return err
}
