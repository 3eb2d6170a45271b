package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig carries everything the HTTP surface is built from.
type RouterConfig struct {
	Auth           *AuthHandler
	Profile        *ProfileHandler
	Account        *AccountHandler
	RequireAuth    func(http.Handler) http.Handler
	// Provision, when set, runs after RequireAuth on the profile routes.
	Provision      func(http.Handler) http.Handler
	AllowedOrigins []string
	// UploadsDir, when set, is served read-only under /uploads/.
	UploadsDir string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.Auth.Register)
			r.Post("/login", cfg.Auth.Login)
			r.With(cfg.RequireAuth).Get("/protected", cfg.Auth.Protected)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireAuth)
			if cfg.Provision != nil {
				r.Use(cfg.Provision)
			}

			r.Get("/user/profile", cfg.Profile.GetProfile)
			r.Put("/user/profile", cfg.Profile.UpdateProfile)
			r.Delete("/user/profile", cfg.Account.DeleteAccount)
		})
	})

	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	return r
}
