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

// filmColumns is the select list shared by every film query: the film row,
// its joined MPA rating and the like-count computed as rate.
const filmColumns = `f.id, f.name, f.description, f.release_date, f.duration,
       m.id AS mpa_id, m.name AS mpa_name,
       COUNT(DISTINCT l.user_id) AS rate`

const filmGroupBy = `GROUP BY f.id, m.id, m.name`

// filmRow maps the joined film query result; mpa columns are nullable
// because the rating is optional.
type filmRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	ReleaseDate domain.Date    `db:"release_date"`
	Duration    int            `db:"duration"`
	MpaID       sql.NullInt64  `db:"mpa_id"`
	MpaName     sql.NullString `db:"mpa_name"`
	Rate        int            `db:"rate"`
}

func (r filmRow) toDomain() domain.Film {
	film := domain.Film{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		ReleaseDate: r.ReleaseDate,
		Duration:    r.Duration,
		Rate:        r.Rate,
	}
	if r.MpaID.Valid {
		film.Mpa = &domain.Mpa{ID: int(r.MpaID.Int64), Name: r.MpaName.String}
	}
	return film
}

func filmsFromRows(rows []filmRow) []domain.Film {
	films := make([]domain.Film, 0, len(rows))
	for _, r := range rows {
		films = append(films, r.toDomain())
	}
	return films
}

// PostgresFilmStore implements FilmStore for PostgreSQL.
type PostgresFilmStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresFilmStore(db *sqlx.DB, logger *slog.Logger) *PostgresFilmStore {
	return &PostgresFilmStore{db: db, logger: logger}
}

func (s *PostgresFilmStore) List(ctx context.Context) ([]domain.Film, error) {
	query := `SELECT ` + filmColumns + `
              FROM film AS f
              LEFT JOIN mpa AS m ON m.id = f.mpa_id
              LEFT JOIN likes AS l ON l.film_id = f.id
              ` + filmGroupBy + `
              ORDER BY f.id`
	rows := []filmRow{}
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list films", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list films: %w", err)
	}
	return filmsFromRows(rows), nil
}

func (s *PostgresFilmStore) GetByID(ctx context.Context, id int64) (*domain.Film, error) {
	query := `SELECT ` + filmColumns + `
              FROM film AS f
              LEFT JOIN mpa AS m ON m.id = f.mpa_id
              LEFT JOIN likes AS l ON l.film_id = f.id
              WHERE f.id = $1
              ` + filmGroupBy
	var row filmRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get film by ID", slog.Int64("filmID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get film by ID: %w", err)
	}
	film := row.toDomain()
	return &film, nil
}

func (s *PostgresFilmStore) Create(ctx context.Context, film *domain.Film) (int64, error) {
	query := `INSERT INTO film (name, description, release_date, duration, mpa_id)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int64
	err := s.db.GetContext(ctx, &id, query,
		film.Name, film.Description, film.ReleaseDate, film.Duration, mpaID(film))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create film", slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to create film: %w", err)
	}
	s.logger.DebugContext(ctx, "Film created", slog.Int64("filmID", id))
	return id, nil
}

func (s *PostgresFilmStore) Update(ctx context.Context, film *domain.Film) (bool, error) {
	query := `UPDATE film
              SET name = $1, description = $2, release_date = $3, duration = $4, mpa_id = $5
              WHERE id = $6`
	result, err := s.db.ExecContext(ctx, query,
		film.Name, film.Description, film.ReleaseDate, film.Duration, mpaID(film), film.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update film", slog.Int64("filmID", film.ID), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to update film: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

func (s *PostgresFilmStore) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM film WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete film", slog.Int64("filmID", id), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to delete film: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

func (s *PostgresFilmStore) ListLikedBy(ctx context.Context, userID int64) ([]domain.Film, error) {
	query := `SELECT ` + filmColumns + `
              FROM film AS f
              JOIN likes AS ul ON ul.film_id = f.id AND ul.user_id = $1
              LEFT JOIN mpa AS m ON m.id = f.mpa_id
              LEFT JOIN likes AS l ON l.film_id = f.id
              ` + filmGroupBy + `
              ORDER BY f.id`
	rows := []filmRow{}
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list films liked by user", slog.Int64("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list films liked by user: %w", err)
	}
	return filmsFromRows(rows), nil
}

func (s *PostgresFilmStore) ListCommon(ctx context.Context, userID, friendID int64) ([]domain.Film, error) {
	query := `SELECT ` + filmColumns + `
              FROM film AS f
              JOIN likes AS ul ON ul.film_id = f.id AND ul.user_id = $1
              JOIN likes AS fl ON fl.film_id = f.id AND fl.user_id = $2
              LEFT JOIN mpa AS m ON m.id = f.mpa_id
              LEFT JOIN likes AS l ON l.film_id = f.id
              ` + filmGroupBy + `
              ORDER BY rate DESC`
	rows := []filmRow{}
	if err := s.db.SelectContext(ctx, &rows, query, userID, friendID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list common films",
			slog.Int64("userID", userID), slog.Int64("friendID", friendID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list common films: %w", err)
	}
	return filmsFromRows(rows), nil
}

func (s *PostgresFilmStore) ListTopByRate(ctx context.Context, count int) ([]domain.Film, error) {
	query := `SELECT ` + filmColumns + `
              FROM film AS f
              LEFT JOIN mpa AS m ON m.id = f.mpa_id
              LEFT JOIN likes AS l ON l.film_id = f.id
              ` + filmGroupBy + `
              ORDER BY rate DESC
              LIMIT $1`
	rows := []filmRow{}
	if err := s.db.SelectContext(ctx, &rows, query, count); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list top films", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list top films: %w", err)
	}
	return filmsFromRows(rows), nil
}

func mpaID(film *domain.Film) interface{} {
	if film.Mpa == nil {
		return nil
	}
	return film.Mpa.ID
}

// PostgresLikeStore implements LikeStore for PostgreSQL.
type PostgresLikeStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresLikeStore(db *sqlx.DB, logger *slog.Logger) *PostgresLikeStore {
	return &PostgresLikeStore{db: db, logger: logger}
}

func (s *PostgresLikeStore) AddLike(ctx context.Context, filmID, userID int64) (bool, error) {
	query := `INSERT INTO likes (film_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	result, err := s.db.ExecContext(ctx, query, filmID, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to add like",
			slog.Int64("filmID", filmID), slog.Int64("userID", userID), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to add like: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

func (s *PostgresLikeStore) RemoveLike(ctx context.Context, filmID, userID int64) (bool, error) {
	query := `DELETE FROM likes WHERE film_id = $1 AND user_id = $2`
	result, err := s.db.ExecContext(ctx, query, filmID, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove like",
			slog.Int64("filmID", filmID), slog.Int64("userID", userID), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to remove like: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}
