// cmd/labserver/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "reddit-fetcher/docs"
	"reddit-fetcher/internal/app"
	"reddit-fetcher/internal/config"
	"reddit-fetcher/internal/logging"
)

// @title Reddit Fetcher Lab API
// @version 1.0
// @description Toy token and mock posts endpoints for experimenting with bearer auth and rate limits locally.
// @BasePath /

func main() {
	cfg, err := config.LoadLabConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	application := app.Initialize(cfg, logger)

	go func() {
		if err := application.Start(); err != nil {
			logger.Error("Server error", slog.Any("error", err))
		}
	}()

	logger.Info("Lab server started", slog.String("addr", "http://127.0.0.1:"+cfg.ServerPort))
	logger.Info("Swagger documentation available", slog.String("url", "http://127.0.0.1:"+cfg.ServerPort+"/swagger/index.html"))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Echo.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", slog.Any("error", err))
	}

	logger.Info("Server stopped")
}
