package handlers

import (
	"net/http"

	"github.com/connectro/backend/internal/logging"
	"github.com/connectro/backend/internal/middleware"
	"github.com/connectro/backend/internal/models"
	"github.com/connectro/backend/internal/services"
)

type AccountHandler struct {
	accounts *services.AccountService
	log      logging.Logger
}

func NewAccountHandler(accounts *services.AccountService, log logging.Logger) *AccountHandler {
	if log == nil {
		log = logging.Discard()
	}
	return &AccountHandler{accounts: accounts, log: log}
}

// DeleteAccount deletes the authenticated user and their stored images.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), accountTimeout)
	defer cancel()

	if err := h.accounts.DeleteAccount(ctx, userID); err != nil {
		h.log.Error(ctx, "delete account failed", "handler", "DeleteAccount", "user", userID, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.APIResponse{Success: true, Message: "Account deleted"})
}
