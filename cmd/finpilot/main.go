package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finpilot/internal/amqp"
	"finpilot/internal/config"
	apphttp "finpilot/internal/http"
	"finpilot/internal/insights"
	applog "finpilot/internal/log"
	"finpilot/internal/services"
	"finpilot/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	rootLogger := applog.New(applog.DefaultConfig())
	applog.SetDefault(rootLogger)
	logger := rootLogger.Logger

	rootLogger.Info("Starting finpilot API")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Gemini is optional; without it the API serves analytics but no
	// generated insights, chat or smart classification.
	var generator insights.Generator
	if cfg.GeminiAPIKey != "" {
		gen, err := insights.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.LLMModel, logger)
		if err != nil {
			logger.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		generator = gen
		logger.Info("Gemini client initialized", "model", cfg.LLMModel)
	} else {
		logger.Info("LLM disabled - no GEMINI_API_KEY provided")
	}

	// AMQP is optional; without it insight refreshes only happen through
	// the worker's periodic sweep or the manual refresh endpoint.
	var publisher services.RefreshPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without it", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	analyticsSvc := services.NewAnalyticsService(repo, generator,
		rootLogger.WithComponent(applog.ComponentAnalytics).Logger)
	insightSvc := services.NewInsightService(repo, generator,
		rootLogger.WithComponent(applog.ComponentInsights).Logger)
	ingestSvc := services.NewIngestService(repo, generator, publisher, cfg.ClassifyBatch,
		rootLogger.WithComponent(applog.ComponentIngest).Logger)

	srv := apphttp.NewServer(":"+cfg.Port, cfg.FrontendURL, cfg.APIToken, repo, analyticsSvc, insightSvc, ingestSvc)

	// Configure server timeouts and limits
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 60 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting finpilot server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
