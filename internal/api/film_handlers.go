package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"filmrate/internal/domain"
	"filmrate/internal/service"
)

func (h *HTTPHandler) GetAllFilms(w http.ResponseWriter, r *http.Request) {
	films, err := h.films.GetAll(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, films)
}

func (h *HTTPHandler) AddFilm(w http.ResponseWriter, r *http.Request) {
	var film domain.Film
	if err := json.NewDecoder(r.Body).Decode(&film); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	created, err := h.films.Add(r.Context(), &film)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, created)
}

func (h *HTTPHandler) UpdateFilm(w http.ResponseWriter, r *http.Request) {
	var film domain.Film
	if err := json.NewDecoder(r.Body).Decode(&film); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	updated, err := h.films.Update(r.Context(), &film)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, updated)
}

func (h *HTTPHandler) GetFilmByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid film id")
		return
	}
	film, err := h.films.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, film)
}

func (h *HTTPHandler) RemoveFilm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid film id")
		return
	}
	if err := h.films.Remove(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

func (h *HTTPHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	filmID, userID, ok := h.likePairIDs(w, r)
	if !ok {
		return
	}
	if err := h.films.AddLike(r.Context(), filmID, userID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

func (h *HTTPHandler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	filmID, userID, ok := h.likePairIDs(w, r)
	if !ok {
		return
	}
	if err := h.films.RemoveLike(r.Context(), filmID, userID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

func (h *HTTPHandler) GetPopularFilms(w http.ResponseWriter, r *http.Request) {
	count := service.DefaultPopularCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, "Invalid count parameter")
			return
		}
		count = parsed
	}
	films, err := h.films.GetMostPopular(r.Context(), count)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, films)
}

func (h *HTTPHandler) GetCommonFilms(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid userId parameter")
		return
	}
	friendID, err := strconv.ParseInt(r.URL.Query().Get("friendId"), 10, 64)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid friendId parameter")
		return
	}
	films, err := h.films.GetCommonFilms(r.Context(), userID, friendID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, films)
}

func (h *HTTPHandler) GetAllGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.films.GetAllGenres(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, genres)
}

func (h *HTTPHandler) GetGenreByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid genre id")
		return
	}
	genre, err := h.films.GetGenreByID(r.Context(), int(id))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, genre)
}

func (h *HTTPHandler) GetAllMpa(w http.ResponseWriter, r *http.Request) {
	mpas, err := h.films.GetAllMpa(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, mpas)
}

func (h *HTTPHandler) GetMpaByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid mpa id")
		return
	}
	mpa, err := h.films.GetMpaByID(r.Context(), int(id))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, mpa)
}

func (h *HTTPHandler) likePairIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	filmID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid film id")
		return 0, 0, false
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid user id")
		return 0, 0, false
	}
	return filmID, userID, true
}
