package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	database "github.com/bts-green-line/explorer/app/db"
	appLogger "github.com/bts-green-line/explorer/app/logger"
	"github.com/bts-green-line/explorer/app/observability/metrics"
	"github.com/bts-green-line/explorer/app/tracer"
	"github.com/bts-green-line/explorer/config"
	"github.com/bts-green-line/explorer/internal/api/event"
	"github.com/bts-green-line/explorer/internal/api/place"
	"github.com/bts-green-line/explorer/internal/api/review"
	"github.com/bts-green-line/explorer/internal/api/station"
	"github.com/bts-green-line/explorer/internal/api/upload"
	"github.com/bts-green-line/explorer/internal/broadcast"
	api "github.com/bts-green-line/explorer/internal/router"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
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

	tracer.InitTracingAndMetrics(cfg.Metrics.Port)
	metrics.InitAppMetrics()

	// --- Database Setup ---
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

	// --- Broadcast Channel ---
	hub := broadcast.NewHub(logger)
	go hub.Run(ctx)

	// --- Dependency Injection ---
	stationRepo := station.NewRepository(pool, logger)
	stationService := station.NewService(stationRepo, logger)
	stationHandler := station.NewHandler(stationService, logger)

	placeRepo := place.NewRepository(pool, logger)
	placeService := place.NewService(placeRepo, logger)
	placeHandler := place.NewHandler(placeService, logger)

	reviewRepo := review.NewRepository(pool, logger)
	reviewService := review.NewService(reviewRepo, placeRepo, hub, logger)
	reviewHandler := review.NewHandler(reviewService, logger)

	eventRepo := event.NewRepository(pool, logger)
	eventService := event.NewService(eventRepo, logger)
	eventHandler := event.NewHandler(eventService, logger)

	uploadHandler := upload.NewHandler(cfg.Upload.Dir, cfg.Upload.PublicBaseURL, logger)

	// --- Router Setup ---
	routerConfig := &api.Config{
		StationHandler: stationHandler,
		PlaceHandler:   placeHandler,
		ReviewHandler:  reviewHandler,
		EventHandler:   eventHandler,
		UploadHandler:  uploadHandler,
		Hub:            hub,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		UploadDir:      cfg.Upload.Dir,
	}
	mainRouter := api.SetupRouter(routerConfig)

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	requestTimeout := cfg.Server.Timeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	// --- Graceful Shutdown ---
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
	var logger *slog.Logger

	if mode == "development" || mode == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
