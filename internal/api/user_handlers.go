package api

import (
	"encoding/json"
	"net/http"

	"filmrate/internal/domain"
)

func (h *HTTPHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetAll(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, users)
}

func (h *HTTPHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	created, err := h.users.Add(r.Context(), &user)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, created)
}

func (h *HTTPHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	updated, err := h.users.Update(r.Context(), &user)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, updated)
}

func (h *HTTPHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid user id")
		return
	}
	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

func (h *HTTPHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid user id")
		return
	}
	if err := h.users.Remove(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

func (h *HTTPHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	userID, friendID, ok := h.friendPairIDs(w, r)
	if !ok {
		return
	}
	if err := h.users.AddToFriends(r.Context(), userID, friendID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

func (h *HTTPHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, friendID, ok := h.friendPairIDs(w, r)
	if !ok {
		return
	}
	if err := h.users.RemoveFromFriends(r.Context(), userID, friendID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

func (h *HTTPHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid user id")
		return
	}
	friends, err := h.users.GetFriends(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, friends)
}

func (h *HTTPHandler) GetCommonFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid user id")
		return
	}
	otherID, err := pathID(r, "otherId")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid user id")
		return
	}
	common, err := h.users.GetCommonFriends(r.Context(), userID, otherID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, common)
}

func (h *HTTPHandler) GetFilmsLikedByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid user id")
		return
	}
	films, err := h.films.GetFilmsLikedByUser(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, films)
}

func (h *HTTPHandler) friendPairIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid user id")
		return 0, 0, false
	}
	friendID, err := pathID(r, "friendId")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid friend id")
		return 0, 0, false
	}
	return userID, friendID, true
}
