package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitbuddy-backend/internal/config"
	"fitbuddy-backend/internal/handlers"
	"fitbuddy-backend/internal/middleware"
	"fitbuddy-backend/internal/repository"
	"fitbuddy-backend/internal/services"
	"fitbuddy-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Run schema migrations
	if err := repository.RunMigrations(context.Background(), cfg.Database.DSN()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize object store
	store, localStore, err := newObjectStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create object store")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	// Initialize services
	tokens := services.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL.Std())
	userService := services.NewUserService(userRepo, store, tokens)
	matchService := services.NewMatchService(matchRepo, userRepo, cfg.Match.PendingTTL.Std())
	wsHub := services.NewWSHub()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	matchHandler := handlers.NewMatchHandler(matchService, wsHub)
	wsHandler := handlers.NewWebSocketHandler(wsHub, tokens)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	// Routes
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Get("/users", userHandler.List)
		r.Post("/users", userHandler.Create)
		r.Get("/users/{id}", userHandler.Get)
		r.Put("/users/{id}", userHandler.Update)
		r.Delete("/users/{id}", userHandler.Delete)

		r.Get("/matches", matchHandler.List)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(tokens))
			r.Get("/auth/me", authHandler.Me)
			r.Post("/matches", matchHandler.Create)
			r.Post("/matches/{id}/accept", matchHandler.Accept)
			r.Post("/matches/{id}/decline", matchHandler.Decline)
		})
	})

	// Uploaded images are served directly when the local backend is
	// active; with s3 the bucket serves them.
	if localStore != nil {
		fs := http.StripPrefix(cfg.Storage.PublicURL, http.FileServer(http.Dir(localStore.Dir())))
		r.Get(cfg.Storage.PublicURL+"/*", fs.ServeHTTP)
	}

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Start the match expiry sweeper
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go matchService.RunExpirySweeper(sweepCtx, cfg.Match.SweepInterval.Std())

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stopSweep()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// newObjectStore builds the configured image store. The local store is
// returned separately so the static file route can be mounted.
func newObjectStore(cfg *config.Config) (storage.ObjectStore, *storage.LocalStore, error) {
	switch cfg.Storage.Backend {
	case "s3":
		s3Store, err := storage.NewS3Store(
			context.Background(),
			cfg.Storage.S3.Region,
			cfg.Storage.S3.Bucket,
			cfg.Storage.S3.AccessKey,
			cfg.Storage.S3.SecretKey,
			cfg.Storage.S3.Endpoint,
			cfg.Storage.PublicURL,
		)
		if err != nil {
			return nil, nil, err
		}
		return s3Store, nil, nil
	default:
		localStore, err := storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.PublicURL)
		if err != nil {
			return nil, nil, err
		}
		return localStore, localStore, nil
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
