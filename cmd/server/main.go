package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/connectro/backend/internal/config"
	"github.com/connectro/backend/internal/handlers"
	"github.com/connectro/backend/internal/logging"
	appMiddleware "github.com/connectro/backend/internal/middleware"
	"github.com/connectro/backend/internal/services"
	"github.com/connectro/backend/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	users, closeUsers, err := openUserStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeUsers()

	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	objects := storage.NewStorage(backend)
	if err := objects.EnsureBucket(ctx); err != nil {
		// Non-fatal.
		logger.Warn(ctx, "could not ensure bucket", "bucket", objects.Bucket(), "error", err)
	}

	requireAuth, err := authMiddleware(ctx, cfg)
	if err != nil {
		return err
	}

	var captcha services.CaptchaVerifier
	if cfg.RecaptchaSecret != "" {
		captcha = services.NewRecaptchaVerifier(cfg.RecaptchaSecret, logger.With("component", "captcha"))
	}

	hasher := services.NewBcryptHasher(cfg.BcryptCost)
	userSvc := services.NewUserService(users, hasher)
	media := services.NewMediaService(objects, logger.With("component", "media"))
	profiles := services.NewProfileService(users, media, hasher, logger.With("component", "profile"))
	accounts := services.NewAccountService(users, media, logger.With("component", "account"))

	routerCfg := handlers.RouterConfig{
		Auth: handlers.NewAuthHandler(
			userSvc,
			captcha,
			cfg.JWTSecret,
			cfg.JWTExpiration,
			logger.With("component", "auth"),
		),
		Profile:        handlers.NewProfileHandler(profiles, cfg.MaxUploadSizeMB, logger.With("component", "profile")),
		Account:        handlers.NewAccountHandler(accounts, logger.With("component", "account")),
		RequireAuth:    requireAuth,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.AuthProvider == config.AuthProviderFirebase {
		// Firebase users sign up client-side; their record is created on first use.
		routerCfg.Provision = handlers.ProvisionUser(userSvc, logger.With("component", "provision"))
	}
	if disk, ok := backend.(*storage.DiskClient); ok {
		routerCfg.UploadsDir = disk.Root()
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           handlers.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "api server starting",
			"addr", cfg.ServerAddress,
			"store", cfg.Store.Backend,
			"storage", cfg.Storage.Backend,
			"auth", cfg.AuthProvider,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logger.Info(shutdownCtx, "shutting down")
	return srv.Shutdown(shutdownCtx)
}

func openUserStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (services.UserStore, func(), error) {
	if cfg.Store.Backend == config.StoreMemory {
		logger.Warn(ctx, "using in-memory user store; data is lost on restart")
		return services.NewMemoryUserStore(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := services.ConnectMongo(connectCtx, cfg.Store.MongoURI, cfg.Store.MongoTLS)
	if err != nil {
		return nil, nil, err
	}
	store := services.NewMongoUserStore(client, cfg.Store.MongoDB)
	if err := store.EnsureIndexes(connectCtx); err != nil {
		_ = store.Close(context.Background())
		return nil, nil, err
	}

	closeFn := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn(closeCtx, "mongo disconnect failed", "error", err)
		}
	}
	return store, closeFn, nil
}

func authMiddleware(ctx context.Context, cfg *config.Config) (func(http.Handler) http.Handler, error) {
	if cfg.AuthProvider != config.AuthProviderFirebase {
		return appMiddleware.JWTAuth(cfg.JWTSecret), nil
	}

	// Firebase Auth (server-side verification of ID tokens)
	authClient, err := appMiddleware.NewFirebaseAuthClient(ctx, appMiddleware.FirebaseAuthConfig{
		ProjectID:       cfg.Firebase.ProjectID,
		CredentialsJSON: cfg.Firebase.CredentialsJSON,
	})
	if err != nil {
		return nil, err
	}
	return appMiddleware.FirebaseAuth(authClient), nil
}
