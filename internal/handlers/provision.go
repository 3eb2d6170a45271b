package handlers

import (
	"errors"
	"net/http"

	"github.com/connectro/backend/internal/logging"
	"github.com/connectro/backend/internal/middleware"
	"github.com/connectro/backend/internal/services"
)

// ProvisionUser makes sure an externally authenticated identity has a user
// record before the request reaches a profile handler. It must run after the
// identity middleware.
func ProvisionUser(users *services.UserService, log logging.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logging.Discard()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := middleware.GetUserID(r.Context())
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
			defer cancel()

			if _, err := users.GetOrCreate(ctx, userID, middleware.GetUserEmail(r.Context())); err != nil {
				if !errors.Is(err, services.ErrNotFound) {
					log.Error(ctx, "provision user failed", "user", userID, "error", err)
				}
				writeServiceError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
