package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"filmrate/internal/service"
)

// HTTPHandler holds the transport-facing dependencies. It does no business
// logic itself: it decodes, delegates to the services and maps their error
// taxonomy onto status codes.
type HTTPHandler struct {
	users  *service.UserService
	films  *service.FilmService
	logger *slog.Logger
}

func NewHTTPHandler(users *service.UserService, films *service.FilmService, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		users:  users,
		films:  films,
		logger: logger,
	}
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response",
				slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy to HTTP statuses:
// validation failures are 400, missing entities 404, everything else
// (including read-back inconsistencies) 500.
func (h *HTTPHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		h.respondError(w, r, http.StatusBadRequest, validationErr.Error())
		return
	}
	var notFoundErr *service.NotFoundError
	if errors.As(err, &notFoundErr) {
		h.respondError(w, r, http.StatusNotFound, notFoundErr.Error())
		return
	}
	h.logger.ErrorContext(r.Context(), "Request failed",
		slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	h.respondError(w, r, http.StatusInternalServerError, "Internal server error")
}

// pathID parses a numeric path variable.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
