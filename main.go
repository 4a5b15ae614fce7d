package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	database "github.com/sukhpreet-s/travel-planner-api/app/db"
	appLogger "github.com/sukhpreet-s/travel-planner-api/app/logger"
	"github.com/sukhpreet-s/travel-planner-api/app/observability/metrics"
	"github.com/sukhpreet-s/travel-planner-api/config"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/admin"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/auth"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/chat"
	generativeAI "github.com/sukhpreet-s/travel-planner-api/internal/api/generative_ai"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/geocoding"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/place"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/recommendation"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/trip"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/weather"
	api "github.com/sukhpreet-s/travel-planner-api/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger(cfg.Mode)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Metrics ---
	exporter, err := otelprom.New()
	if err != nil {
		logger.Error("Failed to create prometheus exporter", slog.Any("error", err))
		os.Exit(1)
	}
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)))
	metrics.InitAppMetrics()

	// --- Database ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Model client ---
	aiClient, err := generativeAI.NewAIClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
	if err != nil {
		logger.Error("Failed to initialize model client", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Dependency wiring ---
	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewService(authRepo, cfg.JWT, cfg.Admin.SecretCode, logger)
	authHandler := auth.NewHandlerImpl(authService, logger)

	geocoder := geocoding.NewService(logger)
	weatherService := weather.NewService(logger)
	modeService := recommendation.NewService(aiClient, logger)

	placeRepo := place.NewPostgresPlaceRepo(pool, logger)
	placeService := place.NewService(placeRepo, aiClient, logger)
	placeHandler := place.NewHandlerImpl(placeService, logger)

	chatRepo := chat.NewPostgresChatRepo(pool, logger)
	chatService := chat.NewService(chatRepo, authRepo, aiClient, logger)
	chatHandler := chat.NewHandlerImpl(chatService, logger)

	tripRepo := trip.NewPostgresTripRepo(pool, logger)
	tripService := trip.NewService(tripRepo, authRepo, geocoder, weatherService,
		modeService, placeService, chatService, logger)
	tripHandler := trip.NewHandlerImpl(tripService, logger)

	adminRepo := admin.NewPostgresAdminRepo(pool, logger)
	adminService := admin.NewService(adminRepo, tripRepo, chatRepo, logger)
	adminHandler := admin.NewHandlerImpl(adminService, logger)

	mainRouter := api.SetupRouter(&api.Config{
		AuthHandler:            authHandler,
		TripHandler:            tripHandler,
		ChatHandler:            chatHandler,
		PlaceHandler:           placeHandler,
		AdminHandler:           adminHandler,
		AuthenticateMiddleware: auth.Authenticate(logger, cfg.JWT),
		RequireAdmin:           auth.RequireAdmin(logger),
	})

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(cfg.Server.Timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	srv := &http.Server{
		Addr:         cfg.Server.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", srv.Addr))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}
	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger(mode string) *slog.Logger {
	if mode == "development" || mode == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger := slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
		return logger
	}

	jsonOpts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
	log.Println("Initialized production logger (JSON)")
	return logger
}
