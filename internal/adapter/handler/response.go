package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"go.uber.org/zap"
)

// errorBody is the JSON envelope of every failed request.
type errorBody struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

type messageBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// classify maps a domain error to its HTTP status and public kind. Unknown errors
// are internal; their text is never sent to the client.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "DuplicateEmail", "Email is already registered"
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusConflict, "DuplicateUsername", "Username is already taken"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "UserNotFound", "User not found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "InvalidCredentials", "Wrong credentials"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "Unauthorized", "Unauthorized"
	case errors.Is(err, domain.ErrListingNotFound):
		return http.StatusNotFound, "NotFound", "Listing not found"
	case errors.Is(err, domain.ErrEmptySet):
		return http.StatusBadRequest, "EmptySet", "You must upload at least one image"
	case errors.Is(err, domain.ErrTooManyImages):
		return http.StatusBadRequest, "TooManyImages", err.Error()
	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusBadRequest, "ImageTooLarge", err.Error()
	case errors.Is(err, domain.ErrUnresolvedLocal):
		return http.StatusUnprocessableEntity, "UnresolvedLocal", "Image upload failed"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "InvalidInput", err.Error()
	default:
		return http.StatusInternalServerError, "InternalError", "Internal Server Error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind, message := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		h.logger.Debug("Request rejected", zap.String("path", r.URL.Path), zap.String("kind", kind), zap.Error(err))
	}
	if h.metrics != nil {
		h.metrics.APIErrorsTotal.WithLabelValues(routePattern(r), kind).Inc()
	}
	writeJSON(w, status, errorBody{StatusCode: status, Error: kind, Message: message})
}
