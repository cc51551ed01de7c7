package store

import (
	"context"
	"errors"

	"filmrate/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// UserStore defines data operations over user records. GetByID returns
// ErrUserNotFound for an absent id; Update and Delete report through their
// bool result whether any row was matched.
type UserStore interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (int64, error)
	Update(ctx context.Context, user *domain.User) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// FriendStore manages the directed friendship edge (user -> friend).
// AddFriend is idempotent: re-adding an existing edge is not an error and
// reports false.
type FriendStore interface {
	AddFriend(ctx context.Context, userID, friendID int64) (bool, error)
	RemoveFriend(ctx context.Context, userID, friendID int64) (bool, error)
	// ListFriends returns the users the given user has an outgoing edge to.
	ListFriends(ctx context.Context, userID int64) ([]domain.User, error)
	// ListCommonFriends returns users that are friend targets of both ids.
	ListCommonFriends(ctx context.Context, userID, otherID int64) ([]domain.User, error)
}
