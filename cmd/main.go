package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/config"
	"github.com/Dosada05/swiss-tournament/db"
	"github.com/Dosada05/swiss-tournament/handlers"
	"github.com/Dosada05/swiss-tournament/repositories"
	api "github.com/Dosada05/swiss-tournament/routes"
	"github.com/Dosada05/swiss-tournament/services"
	"github.com/Dosada05/swiss-tournament/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.Bool("archive_enabled", cfg.ArchiveEnabled()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database connection established")

	// Хранилище архивов (Cloudflare R2) опционально
	var uploader storage.FileUploader
	if cfg.ArchiveEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	}

	// WebSocket Hub и слушатель событий Postgres
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	go func() {
		if err := db.ListenTournamentEvents(ctx, cfg.DatabaseURL, logger, wsHub.Dispatch); err != nil {
			logger.Error("tournament event listener stopped", slog.Any("error", err))
		}
	}()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	pairingRepo := repositories.NewPostgresPairingRepository(dbConn)
	events := repositories.NewPostgresEventPublisher(dbConn)

	// Инициализация сервисов
	txRunner := services.NewSQLTxRunner(dbConn, logger)
	engine := brackets.NewSwissGenerator(brackets.DefaultPolicy())
	authService := services.NewAuthService(tournamentRepo, cfg.JWTSecretKey, cfg.EditorTokenTTL)
	tournamentService := services.NewTournamentService(txRunner, tournamentRepo, playerRepo, events, uploader, logger)
	playerService := services.NewPlayerService(txRunner, tournamentRepo, playerRepo, events, logger)
	standingsService := services.NewStandingsService(txRunner, tournamentRepo, playerRepo, roundRepo, pairingRepo)
	archiveService := services.NewArchiveService(standingsService, tournamentRepo, uploader, logger)
	roundService := services.NewRoundService(
		txRunner,
		tournamentRepo,
		playerRepo,
		roundRepo,
		pairingRepo,
		engine,
		standingsService,
		archiveService,
		events,
		logger,
	)
	logger.Info("services initialized", slog.String("pairing_engine", engine.GetName()))

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router,
		api.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AuthRateLimit:  cfg.AuthRateLimit,
			TokenParser:    authService,
		},
		api.Handlers{
			Auth:       handlers.NewAuthHandler(authService),
			Tournament: handlers.NewTournamentHandler(tournamentService, authService),
			Player:     handlers.NewPlayerHandler(playerService),
			Round:      handlers.NewRoundHandler(roundService),
			Standings:  handlers.NewStandingsHandler(standingsService),
			WebSocket:  handlers.NewWebSocketHandler(wsHub, tournamentService, nil, logger),
		},
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
