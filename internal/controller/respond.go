package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/middleware"
	"github.com/unclebandit/campaign-mailer/internal/model"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// StatusFor maps a service error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, appErrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, appErrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, appErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, appErrors.ErrConflict), errors.Is(err, appErrors.ErrSendInProgress):
		return http.StatusConflict
	case errors.Is(err, appErrors.ErrInvalidTransition), errors.Is(err, appErrors.ErrNoDefaultConfig):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteError responds with {"error": ...}. Internal errors are logged and
// their details hidden from the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorMessage(r, err)
	WriteJSON(w, status, map[string]string{"error": msg})
}

func errorMessage(r *http.Request, err error) (int, string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.From(r.Context()).Error("request failed", logger.Err(err))
		return status, "internal server error"
	}
	return status, err.Error()
}

func badRequest(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid body")
		return false
	}
	return true
}

func identity(r *http.Request) model.Identity {
	id, _ := middleware.IdentityFrom(r.Context())
	return id
}
