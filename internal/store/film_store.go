package store

import (
	"context"
	"errors"

	"filmrate/internal/domain"
)

var (
	ErrFilmNotFound  = errors.New("film not found")
	ErrGenreNotFound = errors.New("genre not found")
	ErrMpaNotFound   = errors.New("mpa rating not found")
)

// FilmStore defines data operations over film records. Films returned by
// read methods carry their Mpa and computed Rate but not their genre list;
// genre hydration goes through FilmGenreStore.
type FilmStore interface {
	List(ctx context.Context) ([]domain.Film, error)
	GetByID(ctx context.Context, id int64) (*domain.Film, error)
	Create(ctx context.Context, film *domain.Film) (int64, error)
	Update(ctx context.Context, film *domain.Film) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// ListLikedBy returns films with at least one like from the user.
	ListLikedBy(ctx context.Context, userID int64) ([]domain.Film, error)
	// ListCommon returns films liked by both users, rate descending.
	ListCommon(ctx context.Context, userID, friendID int64) ([]domain.Film, error)
	// ListTopByRate returns at most count films with the highest rate.
	ListTopByRate(ctx context.Context, count int) ([]domain.Film, error)
}

// MpaStore reads the seeded MPA rating table.
type MpaStore interface {
	List(ctx context.Context) ([]domain.Mpa, error)
	GetByID(ctx context.Context, id int) (*domain.Mpa, error)
}

// GenreStore reads the seeded genre table. GetByIDs is the batch form used
// for existence checks: absent ids are simply missing from the result map.
type GenreStore interface {
	List(ctx context.Context) ([]domain.Genre, error)
	GetByID(ctx context.Context, id int) (*domain.Genre, error)
	GetByIDs(ctx context.Context, ids []int) (map[int]domain.Genre, error)
}

// FilmGenreStore manages the film-genre association table. The batch
// getters return maps keyed by film id; films without associations are
// absent from the map, which callers treat as an empty genre list.
type FilmGenreStore interface {
	ReplaceForFilm(ctx context.Context, filmID int64, genres []domain.Genre) error
	DeleteForFilm(ctx context.Context, filmID int64) error
	GetForFilm(ctx context.Context, filmID int64) ([]domain.Genre, error)
	GetForFilms(ctx context.Context, filmIDs []int64) (map[int64][]domain.Genre, error)
	GetAllGroupedByFilm(ctx context.Context) (map[int64][]domain.Genre, error)
}

// LikeStore manages the like edge (film, user). AddLike is idempotent and
// reports false when the edge already existed; RemoveLike reports false
// when there was nothing to delete.
type LikeStore interface {
	AddLike(ctx context.Context, filmID, userID int64) (bool, error)
	RemoveLike(ctx context.Context, filmID, userID int64) (bool, error)
}
