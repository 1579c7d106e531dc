package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"storefront-crm/internal/app"
	"storefront-crm/internal/config"
	"storefront-crm/internal/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat, "storefront-crm")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.NewServer(cfg, zlog).Start(ctx); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
