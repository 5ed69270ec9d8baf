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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/beachpoint/portal/backend"
	"github.com/beachpoint/portal/brackets"
	"github.com/beachpoint/portal/config"
	"github.com/beachpoint/portal/db"
	"github.com/beachpoint/portal/handlers"
	"github.com/beachpoint/portal/mq"
	"github.com/beachpoint/portal/repositories"
	api "github.com/beachpoint/portal/routes"
	"github.com/beachpoint/portal/services"
	"github.com/beachpoint/portal/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе журнала отправок
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
	logger.Info("database connection established")

	// Клиент бекенда турниров
	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendRPM, logger)
	logger.Info("tournament backend client initialized", slog.String("base_url", cfg.BackendBaseURL))

	// Хранилище изображений (Cloudflare R2), опционально
	var images storage.ImageURLResolver
	if cfg.R2Enabled() {
		images, err = storage.NewCloudflareR2Resolver(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 resolver", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 resolver initialized")
	} else {
		logger.Info("Cloudflare R2 resolver disabled, avatars and banners will not be resolved")
	}

	// Publisher событий регистрации, опционально
	var publisher *mq.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Error("failed to initialize event publisher", slog.Any("error", err))
			os.Exit(1)
		}
		defer publisher.Close()
		logger.Info("event publisher initialized", slog.String("exchange", cfg.AMQPExchange))
	} else {
		logger.Info("event publisher disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация хранилищ
	flowRepo := repositories.NewMemoryFlowRepository()
	journal := repositories.NewPostgresSubmissionJournal(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	eligibilityService := services.NewEligibilityService()
	flowService := services.NewFlowService(flowRepo, backendClient, eligibilityService, images, logger)
	pairingService := services.NewPairingService(flowRepo, backendClient)
	submissionService := services.NewSubmissionService(backendClient, journal, flowRepo, publisher, logger)
	bracketService := services.NewBracketService(backendClient, images, wsHub)
	logger.Info("Services initialized")

	// Выметание брошенных потоков
	sweeperCtx, cancelSweeper := context.WithCancel(context.Background())
	defer cancelSweeper()
	go flowService.RunSweeper(sweeperCtx, time.Duration(cfg.FlowTTLMinutes)*time.Minute)
	logger.Info("flow sweeper started", slog.Int("ttl_minutes", cfg.FlowTTLMinutes))

	// Инициализация обработчиков HTTP
	flowHandler := handlers.NewFlowHandler(flowService)
	pairingHandler := handlers.NewPairingHandler(pairingService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	bracketHandler := handlers.NewBracketHandler(bracketService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecret,
		cfg.RateLimitPerMinute,
		flowHandler,
		pairingHandler,
		submissionHandler,
		bracketHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

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

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
