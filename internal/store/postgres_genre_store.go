package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"filmrate/internal/domain"
)

// PostgresGenreStore implements GenreStore for PostgreSQL.
type PostgresGenreStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresGenreStore(db *sqlx.DB, logger *slog.Logger) *PostgresGenreStore {
	return &PostgresGenreStore{db: db, logger: logger}
}

func (s *PostgresGenreStore) List(ctx context.Context) ([]domain.Genre, error) {
	genres := []domain.Genre{}
	if err := s.db.SelectContext(ctx, &genres, `SELECT id, name FROM genre ORDER BY id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list genres", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

func (s *PostgresGenreStore) GetByID(ctx context.Context, id int) (*domain.Genre, error) {
	var genre domain.Genre
	if err := s.db.GetContext(ctx, &genre, `SELECT id, name FROM genre WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get genre by ID", slog.Int("genreID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get genre by ID: %w", err)
	}
	return &genre, nil
}

// GetByIDs resolves a batch of genre ids in one query; absent ids are simply
// missing from the returned map.
func (s *PostgresGenreStore) GetByIDs(ctx context.Context, ids []int) (map[int]domain.Genre, error) {
	found := make(map[int]domain.Genre, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	genres := []domain.Genre{}
	query := `SELECT id, name FROM genre WHERE id = ANY($1)`
	if err := s.db.SelectContext(ctx, &genres, query, pq.Array(int64Slice(ids))); err != nil {
		s.logger.ErrorContext(ctx, "Failed to get genres by IDs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get genres by IDs: %w", err)
	}
	for _, g := range genres {
		found[g.ID] = g
	}
	return found, nil
}

// PostgresFilmGenreStore implements FilmGenreStore for PostgreSQL.
type PostgresFilmGenreStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresFilmGenreStore(db *sqlx.DB, logger *slog.Logger) *PostgresFilmGenreStore {
	return &PostgresFilmGenreStore{db: db, logger: logger}
}

// ReplaceForFilm swaps a film's association set: delete everything, then
// insert the new rows. ON CONFLICT absorbs duplicate genre ids in the input.
func (s *PostgresFilmGenreStore) ReplaceForFilm(ctx context.Context, filmID int64, genres []domain.Genre) error {
	if err := s.DeleteForFilm(ctx, filmID); err != nil {
		return err
	}
	for _, genre := range genres {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO film_genre (film_id, genre_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			filmID, genre.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to insert film genre",
				slog.Int64("filmID", filmID), slog.Int("genreID", genre.ID), slog.String("error", err.Error()))
			return fmt.Errorf("failed to insert film genre: %w", err)
		}
	}
	return nil
}

func (s *PostgresFilmGenreStore) DeleteForFilm(ctx context.Context, filmID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM film_genre WHERE film_id = $1`, filmID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete film genres", slog.Int64("filmID", filmID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete film genres: %w", err)
	}
	return nil
}

func (s *PostgresFilmGenreStore) GetForFilm(ctx context.Context, filmID int64) ([]domain.Genre, error) {
	query := `SELECT g.id, g.name
              FROM film_genre AS fg
              JOIN genre AS g ON g.id = fg.genre_id
              WHERE fg.film_id = $1
              ORDER BY g.id`
	genres := []domain.Genre{}
	if err := s.db.SelectContext(ctx, &genres, query, filmID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to get genres for film", slog.Int64("filmID", filmID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get genres for film: %w", err)
	}
	return genres, nil
}

// GetForFilms fetches associations for the whole id set in one query and
// groups them by film id.
func (s *PostgresFilmGenreStore) GetForFilms(ctx context.Context, filmIDs []int64) (map[int64][]domain.Genre, error) {
	grouped := make(map[int64][]domain.Genre)
	if len(filmIDs) == 0 {
		return grouped, nil
	}
	query := `SELECT fg.film_id, g.id, g.name
              FROM film_genre AS fg
              JOIN genre AS g ON g.id = fg.genre_id
              WHERE fg.film_id = ANY($1)
              ORDER BY fg.film_id, g.id`
	return s.selectGrouped(ctx, query, pq.Array(filmIDs))
}

func (s *PostgresFilmGenreStore) GetAllGroupedByFilm(ctx context.Context) (map[int64][]domain.Genre, error) {
	query := `SELECT fg.film_id, g.id, g.name
              FROM film_genre AS fg
              JOIN genre AS g ON g.id = fg.genre_id
              ORDER BY fg.film_id, g.id`
	return s.selectGrouped(ctx, query)
}

func (s *PostgresFilmGenreStore) selectGrouped(ctx context.Context, query string, args ...interface{}) (map[int64][]domain.Genre, error) {
	rows := []struct {
		FilmID int64  `db:"film_id"`
		ID     int    `db:"id"`
		Name   string `db:"name"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to get grouped film genres", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get grouped film genres: %w", err)
	}
	grouped := make(map[int64][]domain.Genre)
	for _, row := range rows {
		grouped[row.FilmID] = append(grouped[row.FilmID], domain.Genre{ID: row.ID, Name: row.Name})
	}
	return grouped, nil
}

// PostgresMpaStore implements MpaStore for PostgreSQL.
type PostgresMpaStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresMpaStore(db *sqlx.DB, logger *slog.Logger) *PostgresMpaStore {
	return &PostgresMpaStore{db: db, logger: logger}
}

func (s *PostgresMpaStore) List(ctx context.Context) ([]domain.Mpa, error) {
	mpas := []domain.Mpa{}
	if err := s.db.SelectContext(ctx, &mpas, `SELECT id, name FROM mpa ORDER BY id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list mpa ratings", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list mpa ratings: %w", err)
	}
	return mpas, nil
}

func (s *PostgresMpaStore) GetByID(ctx context.Context, id int) (*domain.Mpa, error) {
	var mpa domain.Mpa
	if err := s.db.GetContext(ctx, &mpa, `SELECT id, name FROM mpa WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMpaNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get mpa by ID", slog.Int("mpaID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get mpa by ID: %w", err)
	}
	return &mpa, nil
}

func int64Slice(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
