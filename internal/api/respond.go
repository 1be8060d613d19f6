package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"villamarea/internal/apperrors"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// respondServiceError maps service errors onto HTTP codes. Unknown errors
// are logged and surfaced as a generic 500 so driver messages never reach
// the client.
func respondServiceError(w http.ResponseWriter, err error) {
	var httpErr *apperrors.HTTPError
	if errors.As(err, &httpErr) {
		respondError(w, httpErr.Code, httpErr.Message)
		return
	}
	logrus.Errorf("Unhandled error: %v", err)
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

// decodeAndValidate decodes the JSON body into dst and runs the validate
// tags. Returns false after writing the error response.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}
