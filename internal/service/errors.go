package service

import "fmt"

// Entity kinds used in error values, so callers can render precise
// messages without parsing strings.
const (
	EntityUser  = "user"
	EntityFilm  = "film"
	EntityGenre = "genre"
	EntityMpa   = "mpa"
)

// NotFoundError reports that a referenced id, or the primary subject of a
// get/update/remove, does not exist. Recoverable: maps to a 404 upstream.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s id=%d not found", e.Entity, e.ID)
}

// CreateFailedError reports that a write was accepted by storage but the
// mandatory read-back found no row. This points at a storage-layer bug or
// race; it is propagated, never retried.
type CreateFailedError struct {
	Entity string
	ID     int64
}

func (e *CreateFailedError) Error() string {
	return fmt.Sprintf("%s id=%d has not been persisted", e.Entity, e.ID)
}

// ValidationError reports a structural constraint violation on input,
// detected before any storage call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
