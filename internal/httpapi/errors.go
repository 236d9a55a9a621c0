package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/speedse/speed/internal/article"
	"github.com/speedse/speed/internal/storage"
)

type apiError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
	Invalid []string `json:"invalid,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code string, err error) {
	apiErr := apiError{Code: code, Message: err.Error()}
	var verr *article.ValidationError
	if errors.As(err, &verr) {
		apiErr.Missing = verr.Missing
		apiErr.Invalid = verr.Invalid
	}
	writeJSON(w, status, map[string]any{"error": apiErr})
}

// writeFailure maps domain errors to HTTP statuses.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case article.IsValidationError(err):
		writeErr(w, http.StatusBadRequest, "validation_failed", err)
	case errors.As(err, &maxErr):
		writeErr(w, http.StatusRequestEntityTooLarge, "too_large", err)
	case errors.Is(err, storage.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, article.ErrInvalidTransition):
		writeErr(w, http.StatusConflict, "invalid_transition", err)
	case errors.Is(err, errBadRequest):
		writeErr(w, http.StatusBadRequest, "bad_request", err)
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeErr(w, http.StatusInternalServerError, "internal", errors.New("internal server error"))
	}
}
