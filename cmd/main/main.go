package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/ai"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/config"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/gateway"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/observer"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/phone"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/storage"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/usecase"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/webhook"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/logger"
)

func main() {
	// Set timezone to UTC
	time.Local = time.UTC

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	metricsEnabled := cfg.Metrics.Enabled
	observer.InitMetrics(metricsEnabled)

	logger.Log.Info("Starting LeadTalk webhook processor",
		zap.String("environment", cfg.Environment),
		zap.Int("port", cfg.Server.Port),
	)

	postgresRepo, err := storage.NewPostgresRepo(cfg.Database.PostgresDSN, cfg.Database.PostgresAutoMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize Postgres repository", zap.Error(err))
	}

	instanceRepo := storage.NewInstanceRepoAdapter(postgresRepo)
	contactRepo := storage.NewContactRepoAdapter(postgresRepo)
	leadRepo := storage.NewLeadRepoAdapter(postgresRepo)
	messageRepo := storage.NewMessageRepoAdapter(postgresRepo)
	historyRepo := storage.NewConversationHistoryRepoAdapter(postgresRepo)

	completionClient, err := ai.NewClient(cfg.AI)
	if err != nil {
		logger.Log.Fatal("Failed to initialize completion client", zap.Error(err))
	}
	responder := ai.NewResponder(completionClient, cfg.AI)

	sender, err := gateway.NewClient(cfg.Gateway)
	if err != nil {
		logger.Log.Fatal("Failed to initialize gateway client", zap.Error(err))
	}

	service := usecase.NewPipelineService(
		instanceRepo,
		contactRepo,
		leadRepo,
		messageRepo,
		historyRepo,
		phone.NewNormalizer(cfg.Organization.CountryCode),
		responder,
		sender,
	)

	handler := webhook.NewHandler(service)
	server := webhook.NewServer(strconv.Itoa(cfg.Server.Port), handler, metricsEnabled, logger.Log)
	server.Start()

	logger.Log.Info("Webhook endpoints available",
		zap.String("webhook", fmt.Sprintf("http://localhost:%d/webhook/messages", cfg.Server.Port)),
		zap.String("health", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port)),
	)

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Log.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Log.Error("Failed to stop webhook server gracefully", zap.Error(err))
	}
	if err := contactRepo.Close(shutdownCtx); err != nil {
		logger.Log.Error("Failed to close database connection", zap.Error(err))
	}

	logger.Log.Info("Shutdown complete")
}
