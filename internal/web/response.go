package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ebonmoor/questhall/internal/adventure"
	"github.com/ebonmoor/questhall/internal/auth"
	"github.com/ebonmoor/questhall/internal/campaign"
	"github.com/ebonmoor/questhall/internal/storage"
)

// writeJSON renders payload as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeErrorMessage renders an error payload with an explicit status.
func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError maps a service error to an HTTP status and renders it.
// Unmapped errors are storage failures: logged and reported as 500 without
// leaking internals.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorMessage(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrDuplicateLogin):
		writeErrorMessage(w, http.StatusConflict, "login already registered")
	case errors.Is(err, campaign.ErrAlreadyMember):
		writeErrorMessage(w, http.StatusConflict, "user is already a campaign member")
	case errors.Is(err, adventure.ErrForbidden), errors.Is(err, campaign.ErrForbidden):
		writeErrorMessage(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, storage.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "not found")
	case isValidationError(err):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("request failed: %v", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, auth.ErrEmptyLogin) ||
		errors.Is(err, auth.ErrEmptyPassword) ||
		errors.Is(err, auth.ErrInvalidRole) ||
		errors.Is(err, adventure.ErrEmptyName) ||
		errors.Is(err, adventure.ErrEmptyStory) ||
		errors.Is(err, adventure.ErrEmptyEntryName) ||
		errors.Is(err, campaign.ErrEmptyCharacterName) ||
		errors.Is(err, campaign.ErrInvalidCharacterStat)
}
