package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/dom/heritage-gallery/internal/platform/logger"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Message: message})
}

// respondError maps err to a status. Unclassified errors are logged and
// answered with fallback so no internal detail leaks.
func respondError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error, fallback string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondMessage(w, status, fallback)
		return
	}

	message := http.StatusText(status)
	var derr *domain.Error
	if errors.As(err, &derr) {
		message = derr.Message
	}
	respondMessage(w, status, message)
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Invalidf("Invalid request body")
	}
	return nil
}
