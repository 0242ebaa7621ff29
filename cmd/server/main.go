package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postcard-backend/internal/config"
	"postcard-backend/internal/handlers"
	"postcard-backend/internal/middleware"
	"postcard-backend/internal/repository"
	"postcard-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	postcardRepo := repository.NewPostcardRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	// Initialize services
	verifier := services.NewCognitoVerifier(
		cfg.Cognito.Region,
		cfg.Cognito.UserPoolID,
		cfg.Cognito.ClientID,
	)
	userService := services.NewUserService(userRepo, cfg.JWT.Secret, verifier)
	postcardService, err := services.NewPostcardService(
		postcardRepo,
		cfg.AWS.Region,
		cfg.AWS.S3Bucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create postcard service")
	}
	pushService := services.NewPushService(
		subRepo,
		cfg.Push.VAPIDPublicKey,
		cfg.Push.VAPIDPrivateKey,
		cfg.Push.Subscriber,
	)
	hub := services.NewHub()
	collectionService := services.NewCollectionService(postcardRepo, collectionRepo, pushService, hub)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	postcardHandler := handlers.NewPostcardHandler(postcardService)
	collectionHandler := handlers.NewCollectionHandler(collectionService)
	pushHandler := handlers.NewPushHandler(pushService)
	wsHandler := handlers.NewWebSocketHandler(hub, userService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/token", userHandler.ExchangeToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Post("/users", userHandler.CreateProfile)
			r.Get("/users/me", userHandler.GetMyProfile)
			r.Put("/users/me", userHandler.UpdateMyProfile)
			r.Delete("/users/me", userHandler.DeleteMyProfile)
			r.Post("/users/me/push-subscription", pushHandler.Subscribe)
			r.Delete("/users/me/push-subscription", pushHandler.Unsubscribe)
			r.Get("/users/{user_id}", userHandler.GetUserProfile)

			r.Post("/postcards", postcardHandler.CreatePostcard)
			r.Get("/postcards/my", postcardHandler.GetMyPostcards)
			r.Get("/postcards/nearby", postcardHandler.GetNearby)
			r.Get("/postcards/{postcard_id}", postcardHandler.GetDetail)
			r.Put("/postcards/{postcard_id}", postcardHandler.UpdatePostcard)
			r.Delete("/postcards/{postcard_id}", postcardHandler.DeletePostcard)
			r.Get("/postcards/{postcard_id}/path", postcardHandler.GetPath)
			r.Post("/postcards/{postcard_id}/collect", collectionHandler.Collect)
			r.Post("/postcards/{postcard_id}/like", collectionHandler.Like)
			r.Get("/collection", collectionHandler.GetCollection)

			r.Post("/uploads", postcardHandler.Upload)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Start travel worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if cfg.Travel.Enabled {
		travelService := services.NewTravelService(
			postcardRepo,
			pushService,
			hub,
			cfg.Travel.Interval,
			cfg.Travel.SpeedKmh,
			cfg.Travel.ArriveMeters,
		)
		go travelService.Run(workerCtx)
	}

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
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
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

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
