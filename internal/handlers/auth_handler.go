package handlers

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/connectro/backend/internal/logging"
	"github.com/connectro/backend/internal/middleware"
	"github.com/connectro/backend/internal/models"
	"github.com/connectro/backend/internal/services"
)

type AuthHandler struct {
	userService   *services.UserService
	captcha       services.CaptchaVerifier
	jwtSecret     string
	jwtExpiration time.Duration
	log           logging.Logger
}

// NewAuthHandler builds the register/login handler. captcha may be nil to
// skip the registration challenge.
func NewAuthHandler(userService *services.UserService, captcha services.CaptchaVerifier, jwtSecret string, jwtExpiration time.Duration, log logging.Logger) *AuthHandler {
	if log == nil {
		log = logging.Discard()
	}
	return &AuthHandler{
		userService:   userService,
		captcha:       captcha,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		log:           log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if h.captcha != nil {
		ok, _, err := h.captcha.Verify(ctx, req.RecaptchaToken, clientIP(r))
		if err != nil {
			h.log.Error(ctx, "captcha verify failed", "handler", "Register", "error", err)
			writeJSON(w, http.StatusBadGateway, models.NewErrorResponse("Could not verify captcha"))
			return
		}
		if !ok {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Captcha verification failed"))
			return
		}
	}

	user, err := h.userService.Register(ctx, &req)
	if err != nil {
		if !errors.Is(err, services.ErrEmailExists) && !errors.Is(err, services.ErrUsernameExists) {
			h.log.Error(ctx, "register failed", "handler", "Register", "error", err)
		}
		writeServiceError(w, err)
		return
	}

	token, err := middleware.IssueToken(user.ID, h.jwtSecret, h.jwtExpiration)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to generate token"))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(models.AuthResponse{
		Token: token,
		User:  user.Profile(),
	}))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.userService.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPassword) {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid email or password"))
			return
		}
		h.log.Error(ctx, "login failed", "handler", "Login", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Login failed"))
		return
	}

	token, err := middleware.IssueToken(user.ID, h.jwtSecret, h.jwtExpiration)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to generate token"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.AuthResponse{
		Token: token,
		User:  user.Profile(),
	}))
}

// Protected confirms that the caller's token was accepted.
func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	writeJSON(w, http.StatusOK, models.ProtectedResponse{
		Message: "Protected route accessed",
		UserID:  userID,
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
