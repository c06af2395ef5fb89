package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/starfusion/engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// ValidationErrorResponse writes a 400 carrying every field violation.
func ValidationErrorResponse(w http.ResponseWriter, ve *apperrors.ValidationError) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	return json.NewEncoder(w).Encode(map[string]interface{}{
		"error":      "validation_failed",
		"message":    ve.Error(),
		"violations": ve.Violations,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteError maps an application error onto the right HTTP response.
func WriteError(w http.ResponseWriter, err error) error {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		return ValidationErrorResponse(w, ve)
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return ErrorResponse(w, http.StatusNotFound, "not_found", "resource not found")
	}
	return ErrorResponse(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
