package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/danghamo/peoplerecords/internal/app"
	"github.com/danghamo/peoplerecords/pkg/config"
)

const version = "0.1.0"

func main() {
	// Initialize configuration and logger
	cfg, log, err := config.Initialize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// Ensure logger is flushed on exit
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting people records server",
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
		zap.String("address", cfg.Server.GetServerAddr()),
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to assemble application", zap.Error(err))
		os.Exit(1)
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutting down server...")
		cancel()
	}()

	serveErr := application.Serve(ctx)
	if err := application.Close(); err != nil {
		log.Warn("Failed to release resources", zap.Error(err))
	}
	if serveErr != nil {
		log.Error("Server error", zap.Error(serveErr))
		_ = log.Sync()
		os.Exit(1)
	}

	log.Info("Server gracefully stopped")
}
