package domain

// User is an account in the rating service. ID is assigned by storage on
// insert; Name falls back to Login when left blank (the service enforces
// that before persisting).
type User struct {
	ID       int64  `json:"id" db:"id"`
	Email    string `json:"email" db:"email" validate:"required,email"`
	Login    string `json:"login" db:"login" validate:"required"`
	Name     string `json:"name" db:"name"`
	Birthday Date   `json:"birthday" db:"birthday"`
}
