package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"filmrate/internal/domain"
)

// seedMpas and seedGenres are the reference rows every deployment starts
// with. The memory store seeds them directly; EnsureSchema inserts them
// idempotently into Postgres.
var seedMpas = []domain.Mpa{
	{ID: 1, Name: "G"},
	{ID: 2, Name: "PG"},
	{ID: 3, Name: "PG-13"},
	{ID: 4, Name: "R"},
	{ID: 5, Name: "NC-17"},
}

var seedGenres = []domain.Genre{
	{ID: 1, Name: "Comedy"},
	{ID: 2, Name: "Drama"},
	{ID: 3, Name: "Cartoon"},
	{ID: 4, Name: "Thriller"},
	{ID: 5, Name: "Documentary"},
	{ID: 6, Name: "Action"},
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id       BIGSERIAL PRIMARY KEY,
		email    TEXT NOT NULL,
		login    TEXT NOT NULL,
		name     TEXT NOT NULL,
		birthday DATE
	)`,
	`CREATE TABLE IF NOT EXISTS mpa (
		id   INT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS genre (
		id   INT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS film (
		id           BIGSERIAL PRIMARY KEY,
		name         TEXT NOT NULL,
		description  TEXT,
		release_date DATE,
		duration     INT NOT NULL,
		mpa_id       INT REFERENCES mpa (id)
	)`,
	`CREATE TABLE IF NOT EXISTS film_genre (
		film_id  BIGINT NOT NULL REFERENCES film (id) ON DELETE CASCADE,
		genre_id INT NOT NULL REFERENCES genre (id) ON DELETE CASCADE,
		PRIMARY KEY (film_id, genre_id)
	)`,
	`CREATE TABLE IF NOT EXISTS friends (
		user_id   BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		friend_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		PRIMARY KEY (user_id, friend_id)
	)`,
	`CREATE TABLE IF NOT EXISTS likes (
		film_id BIGINT NOT NULL REFERENCES film (id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		PRIMARY KEY (film_id, user_id)
	)`,
}

// EnsureSchema creates the tables and seeds the mpa/genre reference rows.
// Every statement is idempotent, so running it on each startup is safe.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	for _, mpa := range seedMpas {
		_, err := db.ExecContext(ctx,
			`INSERT INTO mpa (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			mpa.ID, mpa.Name)
		if err != nil {
			return fmt.Errorf("failed to seed mpa: %w", err)
		}
	}
	for _, genre := range seedGenres {
		_, err := db.ExecContext(ctx,
			`INSERT INTO genre (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			genre.ID, genre.Name)
		if err != nil {
			return fmt.Errorf("failed to seed genre: %w", err)
		}
	}
	return nil
}
