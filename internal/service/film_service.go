package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"filmrate/internal/domain"
	"filmrate/internal/store"
)

const DefaultPopularCount = 10

// PopularCache is the most-popular-films ranking cache. The film service
// reads and writes it; any mutation that can change like counts or the film
// set, including user removal, invalidates it.
type PopularCache interface {
	Get(ctx context.Context, count int) ([]domain.Film, error)
	Set(ctx context.Context, count int, films []domain.Film) error
	Invalidate(ctx context.Context)
}

// FilmService implements film, like and reference-data operations. Any
// operation returning multiple films hydrates their genre lists through one
// batched association lookup rather than a per-film query.
type FilmService struct {
	films      store.FilmStore
	mpas       store.MpaStore
	genres     store.GenreStore
	filmGenres store.FilmGenreStore
	users      store.UserStore
	likes      store.LikeStore
	popular    PopularCache // nil disables caching
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewFilmService(
	films store.FilmStore,
	mpas store.MpaStore,
	genres store.GenreStore,
	filmGenres store.FilmGenreStore,
	users store.UserStore,
	likes store.LikeStore,
	popular PopularCache,
	validate *validator.Validate,
	logger *slog.Logger,
) *FilmService {
	return &FilmService{
		films:      films,
		mpas:       mpas,
		genres:     genres,
		filmGenres: filmGenres,
		users:      users,
		likes:      likes,
		popular:    popular,
		validate:   validate,
		logger:     logger,
	}
}

// GetAll returns every film with genres attached from a single grouped
// association read.
func (s *FilmService) GetAll(ctx context.Context) ([]domain.Film, error) {
	films, err := s.films.List(ctx)
	if err != nil {
		return nil, err
	}
	grouped, err := s.filmGenres.GetAllGroupedByFilm(ctx)
	if err != nil {
		return nil, err
	}
	return attachGenres(films, grouped), nil
}

// Add validates the film's MPA and genre references, persists the film and
// its genre associations, and returns the hydrated record read back from
// storage.
func (s *FilmService) Add(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	if err := s.validate.StructCtx(ctx, film); err != nil {
		return nil, asValidationError(err)
	}
	if err := s.checkMpaExists(ctx, film); err != nil {
		return nil, err
	}
	if err := s.checkGenresExist(ctx, film); err != nil {
		return nil, err
	}

	id, err := s.films.Create(ctx, film)
	if err != nil {
		return nil, err
	}
	if err := s.filmGenres.ReplaceForFilm(ctx, id, film.Genres); err != nil {
		return nil, err
	}
	created, err := s.readBack(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidatePopular(ctx)
	s.logger.DebugContext(ctx, "Added film", slog.Int64("filmID", created.ID), slog.String("name", created.Name))
	return created, nil
}

// Update replaces the film record and its whole genre-association set
// (delete-all-then-insert-all, not a diff).
func (s *FilmService) Update(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	if err := s.validate.StructCtx(ctx, film); err != nil {
		return nil, asValidationError(err)
	}
	if err := s.checkMpaExists(ctx, film); err != nil {
		return nil, err
	}
	if err := s.checkGenresExist(ctx, film); err != nil {
		return nil, err
	}

	matched, err := s.films.Update(ctx, film)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, &NotFoundError{Entity: EntityFilm, ID: film.ID}
	}
	if err := s.filmGenres.ReplaceForFilm(ctx, film.ID, film.Genres); err != nil {
		return nil, err
	}
	updated, err := s.readBack(ctx, film.ID)
	if err != nil {
		return nil, err
	}
	s.invalidatePopular(ctx)
	s.logger.DebugContext(ctx, "Updated film", slog.Int64("filmID", updated.ID))
	return updated, nil
}

func (s *FilmService) GetByID(ctx context.Context, id int64) (*domain.Film, error) {
	film, err := s.films.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrFilmNotFound) {
			return nil, &NotFoundError{Entity: EntityFilm, ID: id}
		}
		return nil, err
	}
	genres, err := s.filmGenres.GetForFilm(ctx, id)
	if err != nil {
		return nil, err
	}
	film.Genres = genres
	return film, nil
}

func (s *FilmService) Remove(ctx context.Context, filmID int64) error {
	deleted, err := s.films.Delete(ctx, filmID)
	if err != nil {
		return err
	}
	if !deleted {
		return &NotFoundError{Entity: EntityFilm, ID: filmID}
	}
	s.invalidatePopular(ctx)
	s.logger.DebugContext(ctx, "Removed film", slog.Int64("filmID", filmID))
	return nil
}

func (s *FilmService) AddLike(ctx context.Context, filmID, userID int64) error {
	if err := s.checkFilmExists(ctx, filmID); err != nil {
		return err
	}
	if err := s.checkUserExists(ctx, userID); err != nil {
		return err
	}
	if _, err := s.likes.AddLike(ctx, filmID, userID); err != nil {
		return err
	}
	s.invalidatePopular(ctx)
	s.logger.DebugContext(ctx, "Added like", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

func (s *FilmService) RemoveLike(ctx context.Context, filmID, userID int64) error {
	if err := s.checkFilmExists(ctx, filmID); err != nil {
		return err
	}
	if err := s.checkUserExists(ctx, userID); err != nil {
		return err
	}
	if _, err := s.likes.RemoveLike(ctx, filmID, userID); err != nil {
		return err
	}
	s.invalidatePopular(ctx)
	s.logger.DebugContext(ctx, "Removed like", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

// GetCommonFilms returns films liked by both users, ordered by descending
// like count. Ordering comes pre-sorted from the store.
func (s *FilmService) GetCommonFilms(ctx context.Context, userID, friendID int64) ([]domain.Film, error) {
	if err := s.checkUserExists(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.checkUserExists(ctx, friendID); err != nil {
		return nil, err
	}
	films, err := s.films.ListCommon(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	return s.hydrateGenres(ctx, films)
}

func (s *FilmService) GetFilmsLikedByUser(ctx context.Context, userID int64) ([]domain.Film, error) {
	if err := s.checkUserExists(ctx, userID); err != nil {
		return nil, err
	}
	films, err := s.films.ListLikedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.hydrateGenres(ctx, films)
}

// GetMostPopular returns the count highest-rated films, served from the
// Redis cache when one is configured.
func (s *FilmService) GetMostPopular(ctx context.Context, count int) ([]domain.Film, error) {
	if count <= 0 {
		return nil, &ValidationError{Field: "count", Reason: "must be positive"}
	}
	if s.popular != nil {
		films, err := s.popular.Get(ctx, count)
		if err == nil {
			return films, nil
		}
		if !errors.Is(err, store.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "Popular films cache read failed", slog.String("error", err.Error()))
		}
	}
	films, err := s.films.ListTopByRate(ctx, count)
	if err != nil {
		return nil, err
	}
	films, err = s.hydrateGenres(ctx, films)
	if err != nil {
		return nil, err
	}
	if s.popular != nil {
		if err := s.popular.Set(ctx, count, films); err != nil {
			s.logger.WarnContext(ctx, "Popular films cache write failed", slog.String("error", err.Error()))
		}
	}
	return films, nil
}

// ----- reference data -----

func (s *FilmService) GetAllGenres(ctx context.Context) ([]domain.Genre, error) {
	return s.genres.List(ctx)
}

func (s *FilmService) GetGenreByID(ctx context.Context, id int) (*domain.Genre, error) {
	genre, err := s.genres.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrGenreNotFound) {
			return nil, &NotFoundError{Entity: EntityGenre, ID: int64(id)}
		}
		return nil, err
	}
	return genre, nil
}

func (s *FilmService) GetAllMpa(ctx context.Context) ([]domain.Mpa, error) {
	return s.mpas.List(ctx)
}

func (s *FilmService) GetMpaByID(ctx context.Context, id int) (*domain.Mpa, error) {
	mpa, err := s.mpas.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrMpaNotFound) {
			return nil, &NotFoundError{Entity: EntityMpa, ID: int64(id)}
		}
		return nil, err
	}
	return mpa, nil
}

// ----- helpers -----

// readBack re-fetches a film after a write and attaches its genres. An
// absent row at this point means the write was lost.
func (s *FilmService) readBack(ctx context.Context, id int64) (*domain.Film, error) {
	film, err := s.films.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrFilmNotFound) {
			return nil, &CreateFailedError{Entity: EntityFilm, ID: id}
		}
		return nil, err
	}
	genres, err := s.filmGenres.GetForFilm(ctx, id)
	if err != nil {
		return nil, err
	}
	film.Genres = genres
	return film, nil
}

// hydrateGenres attaches genre lists to a film set using one batched lookup
// keyed by the result's film ids.
func (s *FilmService) hydrateGenres(ctx context.Context, films []domain.Film) ([]domain.Film, error) {
	if len(films) == 0 {
		return films, nil
	}
	ids := make([]int64, len(films))
	for i, film := range films {
		ids[i] = film.ID
	}
	grouped, err := s.filmGenres.GetForFilms(ctx, ids)
	if err != nil {
		return nil, err
	}
	return attachGenres(films, grouped), nil
}

// attachGenres maps each film to its genre list; films absent from the map
// get an empty list, never nil.
func attachGenres(films []domain.Film, grouped map[int64][]domain.Genre) []domain.Film {
	for i := range films {
		genres, ok := grouped[films[i].ID]
		if !ok {
			genres = []domain.Genre{}
		}
		films[i].Genres = genres
	}
	return films
}

func (s *FilmService) checkFilmExists(ctx context.Context, id int64) error {
	if _, err := s.films.GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrFilmNotFound) {
			return &NotFoundError{Entity: EntityFilm, ID: id}
		}
		return err
	}
	return nil
}

func (s *FilmService) checkUserExists(ctx context.Context, id int64) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return &NotFoundError{Entity: EntityUser, ID: id}
		}
		return err
	}
	return nil
}

func (s *FilmService) checkMpaExists(ctx context.Context, film *domain.Film) error {
	if film.Mpa == nil {
		return nil
	}
	if _, err := s.mpas.GetByID(ctx, film.Mpa.ID); err != nil {
		if errors.Is(err, store.ErrMpaNotFound) {
			return &NotFoundError{Entity: EntityMpa, ID: int64(film.Mpa.ID)}
		}
		return err
	}
	return nil
}

// checkGenresExist verifies every referenced genre id in one batch lookup;
// the first missing id fails the whole operation before anything is written.
func (s *FilmService) checkGenresExist(ctx context.Context, film *domain.Film) error {
	if len(film.Genres) == 0 {
		return nil
	}
	ids := make([]int, 0, len(film.Genres))
	for _, genre := range film.Genres {
		ids = append(ids, genre.ID)
	}
	found, err := s.genres.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return &NotFoundError{Entity: EntityGenre, ID: int64(id)}
		}
	}
	return nil
}

func (s *FilmService) invalidatePopular(ctx context.Context) {
	if s.popular != nil {
		s.popular.Invalidate(ctx)
	}
}
