package domain

// Film is a rated movie. Rate is the number of distinct users that liked
// the film; it is recomputed from the likes table on every read and is
// never taken from client input.
type Film struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name" validate:"required"`
	Description string  `json:"description" db:"description" validate:"max=200"`
	ReleaseDate Date    `json:"releaseDate" db:"release_date"`
	Duration    int     `json:"duration" db:"duration" validate:"gt=0"`
	Mpa         *Mpa    `json:"mpa,omitempty"`
	Genres      []Genre `json:"genres"`
	Rate        int     `json:"rate" db:"rate"`
}

// Genre is a seeded lookup entity.
type Genre struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name,omitempty" db:"name"`
}

// Mpa is the MPA age rating, a seeded lookup entity.
type Mpa struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name,omitempty" db:"name"`
}
