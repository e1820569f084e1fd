// Package main is the entry point for the Pantry service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/pantry/internal/agent"
	"github.com/MikeSquared-Agency/pantry/internal/catalog"
	"github.com/MikeSquared-Agency/pantry/internal/config"
	"github.com/MikeSquared-Agency/pantry/internal/embeddings"
	"github.com/MikeSquared-Agency/pantry/internal/encryption"
	"github.com/MikeSquared-Agency/pantry/internal/hermes"
	"github.com/MikeSquared-Agency/pantry/internal/model"
	"github.com/MikeSquared-Agency/pantry/internal/server"
	"github.com/MikeSquared-Agency/pantry/internal/store"
)

func main() {
	// Logger
	logLevel := slog.LevelInfo
	if os.Getenv("PANTRY_LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Credentials at rest: decrypt the OpenAI key when only the fernet token is configured.
	apiKey := cfg.OpenAIAPIKey
	if apiKey == "" && cfg.OpenAIAPIKeyEnc != "" {
		encryptor, err := encryption.NewEncryptor(cfg.EncryptionKey)
		if err != nil {
			logger.Error("encrypted API key configured but no usable encryption key", "error", err)
			os.Exit(1)
		}
		apiKey, err = encryptor.Decrypt(cfg.OpenAIAPIKeyEnc)
		if err != nil {
			logger.Error("failed to decrypt API key", "error", err)
			os.Exit(1)
		}
	}

	// Database
	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := store.Migrate(ctx, db); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	catalogStore := store.NewCatalog(db)

	// Embedding provider
	var embedder embeddings.Provider
	switch cfg.EmbeddingBackend {
	case "openai":
		if apiKey == "" {
			logger.Error("OpenAI API key required for openai embedding backend")
			os.Exit(1)
		}
		embedder = embeddings.NewOpenAIProvider(apiKey, cfg.OpenAIEmbedModel)
	default:
		embedder = embeddings.NewSimpleProvider()
	}
	logger.Info("embedding provider initialized", "backend", embedder.Name())

	// Hermes (NATS) is optional; the service works without it.
	var hermesClient *hermes.Client
	var publisher *hermes.Publisher
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(cfg.NatsURL, logger)
		if err != nil {
			logger.Warn("failed to connect to Hermes (NATS), running without event bus", "error", err)
			hermesClient = nil
		} else {
			defer hermesClient.Close()
			publisher = hermes.NewPublisher(hermesClient, logger)
			logger.Info("connected to Hermes (NATS)", "url", cfg.NatsURL)
		}
	}

	// Catalog manager
	manager := catalog.NewManager(catalogStore, embedder, publisher, logger)
	manager.SetSearchThreshold(cfg.SearchThreshold)

	// Background drift repair (optional)
	if cfg.WorkerEnabled {
		worker := catalog.NewWorker(catalogStore, embedder, catalog.WorkerConfig{
			Interval:  cfg.WorkerInterval,
			BatchSize: cfg.WorkerBatchSize,
		}, logger)
		worker.Start(ctx)
		logger.Info("drift repair worker started", "interval", cfg.WorkerInterval.String())
	}

	// Chat model
	chat, err := model.NewOpenAI(model.OpenAIConfig{APIKey: apiKey, BaseURL: cfg.ChatBaseURL})
	if err != nil {
		logger.Error("failed to initialize chat model", "error", err)
		os.Exit(1)
	}

	// Tools + orchestrator
	registry := agent.NewRegistry()
	agent.RegisterBuiltinTools(registry, manager, db.DBTX())
	orchestrator := agent.New(chat, registry, agent.Config{
		Model:        cfg.ChatModel,
		StepBudget:   cfg.StepBudget,
		SystemPrompt: cfg.SystemPrompt,
	}, logger)

	// Server
	srv := server.New(cfg, db, catalogStore, manager, orchestrator, hermesClient, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down gracefully...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("Pantry starting", "port", cfg.Port, "model", cfg.ChatModel, "step_budget", cfg.StepBudget)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Pantry stopped")
}
