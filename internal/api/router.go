package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewHTTPRouter wires every endpoint. Numeric path vars are constrained to
// digits so fixed segments like /films/popular never collide with /films/{id}.
func NewHTTPRouter(h *HTTPHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(h.RequestIDMiddleware)

	users := router.PathPrefix("/users").Subrouter()
	users.HandleFunc("", h.GetAllUsers).Methods(http.MethodGet)
	users.HandleFunc("", h.AddUser).Methods(http.MethodPost)
	users.HandleFunc("", h.UpdateUser).Methods(http.MethodPut)
	users.HandleFunc("/{id:[0-9]+}", h.GetUserByID).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}", h.RemoveUser).Methods(http.MethodDelete)
	users.HandleFunc("/{id:[0-9]+}/friends", h.GetFriends).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}/friends/common/{otherId:[0-9]+}", h.GetCommonFriends).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}/friends/{friendId:[0-9]+}", h.AddFriend).Methods(http.MethodPut)
	users.HandleFunc("/{id:[0-9]+}/friends/{friendId:[0-9]+}", h.RemoveFriend).Methods(http.MethodDelete)
	users.HandleFunc("/{id:[0-9]+}/films", h.GetFilmsLikedByUser).Methods(http.MethodGet)

	films := router.PathPrefix("/films").Subrouter()
	films.HandleFunc("", h.GetAllFilms).Methods(http.MethodGet)
	films.HandleFunc("", h.AddFilm).Methods(http.MethodPost)
	films.HandleFunc("", h.UpdateFilm).Methods(http.MethodPut)
	films.HandleFunc("/popular", h.GetPopularFilms).Methods(http.MethodGet)
	films.HandleFunc("/common", h.GetCommonFilms).Methods(http.MethodGet)
	films.HandleFunc("/{id:[0-9]+}", h.GetFilmByID).Methods(http.MethodGet)
	films.HandleFunc("/{id:[0-9]+}", h.RemoveFilm).Methods(http.MethodDelete)
	films.HandleFunc("/{id:[0-9]+}/like/{userId:[0-9]+}", h.AddLike).Methods(http.MethodPut)
	films.HandleFunc("/{id:[0-9]+}/like/{userId:[0-9]+}", h.RemoveLike).Methods(http.MethodDelete)

	router.HandleFunc("/genres", h.GetAllGenres).Methods(http.MethodGet)
	router.HandleFunc("/genres/{id:[0-9]+}", h.GetGenreByID).Methods(http.MethodGet)
	router.HandleFunc("/mpa", h.GetAllMpa).Methods(http.MethodGet)
	router.HandleFunc("/mpa/{id:[0-9]+}", h.GetMpaByID).Methods(http.MethodGet)

	return router
}
