package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/hugh/hoteldesk/internal/notify"
	"github.com/hugh/hoteldesk/internal/tasks"
	"github.com/hugh/hoteldesk/pkg/config"
	"github.com/hugh/hoteldesk/pkg/queue"
	"github.com/hugh/hoteldesk/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting hoteldesk mail worker")

	if !cfg.SMTP.Enabled() {
		logger.Error("SMTP_HOST is required to deliver queued mail")
		os.Exit(1)
	}

	sender, err := notify.NewSMTPSender(&cfg.SMTP)
	if err != nil {
		logger.Error("failed to create smtp sender", "error", err)
		os.Exit(1)
	}

	// Create Asynq server
	srv, err := queue.NewServer(&cfg.KV, cfg.Worker.Concurrency)
	if err != nil {
		logger.Error("failed to create queue server", "error", err)
		os.Exit(1)
	}

	// Report the backlog left by a previous run
	if inspector, err := queue.NewInspector(&cfg.KV); err == nil {
		if info, err := inspector.GetQueueInfo("critical"); err == nil {
			logger.Info("mail queue backlog",
				"pending", info.Pending,
				"retry", info.Retry,
				"archived", info.Archived,
			)
		}
		_ = inspector.Close()
	}

	// Create task handler
	handler := tasks.NewHandler(sender, logger)

	// Register handlers
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	if err := srv.Start(mux); err != nil {
		logger.Error("worker error", "error", err)
		os.Exit(1)
	}

	logger.Info("worker started, waiting for tasks...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker...")
	srv.Shutdown()

	logger.Info("worker stopped")
}
