package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finpilot/internal/amqp"
	"finpilot/internal/config"
	"finpilot/internal/insights"
	applog "finpilot/internal/log"
	"finpilot/internal/services"
	"finpilot/internal/storage"
	"finpilot/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	rootLogger := applog.New(applog.Config{
		Level:     applog.DefaultConfig().Level,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(rootLogger)
	logger := rootLogger.Logger

	rootLogger.Info("Starting finpilot-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	if cfg.GeminiAPIKey == "" {
		logger.Error("GEMINI_API_KEY is required for the insight worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	generator, err := insights.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.LLMModel, logger)
	if err != nil {
		logger.Error("Failed to initialize Gemini client", "error", err)
		os.Exit(1)
	}
	logger.Info("Gemini client initialized", "model", cfg.LLMModel)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	insightSvc := services.NewInsightService(repo, generator,
		rootLogger.WithComponent(applog.ComponentInsights).Logger)
	insightWorker := worker.NewInsightWorker(insightSvc, repo)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start message consumption
	go func() {
		handler := func(msg *amqp.InsightRefreshMessage) error {
			return insightWorker.HandleRefreshMessage(ctx, msg)
		}
		if err := amqpClient.ConsumeRefresh(ctx, handler); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}
	}()

	// Periodic refresh catches businesses whose messages were lost and
	// keeps long-idle businesses from serving stale insights.
	ticker := time.NewTicker(cfg.InsightInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := insightWorker.RefreshAll(ctx); err != nil {
					logger.Error("Periodic insight refresh failed", "error", err)
				}
			}
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give in-flight work a moment to finish
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
