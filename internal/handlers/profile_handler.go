package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/connectro/backend/internal/logging"
	"github.com/connectro/backend/internal/middleware"
	"github.com/connectro/backend/internal/models"
	"github.com/connectro/backend/internal/services"
)

type ProfileHandler struct {
	profiles    *services.ProfileService
	maxBodySize int64
	log         logging.Logger
}

func NewProfileHandler(profiles *services.ProfileService, maxSizeMB int64, log logging.Logger) *ProfileHandler {
	if log == nil {
		log = logging.Discard()
	}
	return &ProfileHandler{
		profiles:    profiles,
		maxBodySize: maxSizeMB * 1024 * 1024,
		log:         log,
	}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	prof, err := h.profiles.GetProfile(ctx, userID)
	if err != nil {
		h.log.Error(ctx, "get profile failed", "handler", "GetProfile", "user", userID, "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	// Inline images travel in the JSON body.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req models.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, models.NewErrorResponse(
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit)))
			return
		}
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	prof, err := h.profiles.UpdateProfile(ctx, userID, &req)
	if err != nil {
		h.log.Error(ctx, "update profile failed", "handler", "UpdateProfile", "user", userID, "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}
