package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/connectro/backend/internal/models"
	"github.com/connectro/backend/internal/services"
)

const (
	requestTimeout = 10 * time.Second
	// Account deletion also clears every profile image key.
	accountTimeout = 20 * time.Second
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func contextWithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, d)
}

// decodeJSON reads a JSON body, rejecting unknown trailing data.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// statusFor maps service errors to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidCredential):
		return http.StatusBadRequest, "Current password is incorrect"
	case errors.Is(err, services.ErrInvalidImage):
		return http.StatusBadRequest, "Invalid image data"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, services.ErrEmailExists):
		return http.StatusConflict, "Email already registered"
	case errors.Is(err, services.ErrUsernameExists):
		return http.StatusConflict, "Username already taken"
	case errors.Is(err, services.ErrMediaUploadFailed):
		return http.StatusInternalServerError, "Failed to upload image"
	default:
		return http.StatusInternalServerError, "Something went wrong"
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, msg := statusFor(err)
	writeJSON(w, status, models.NewErrorResponse(msg))
}
