package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/RichardoC/drivewise/internal/app"
	"github.com/RichardoC/drivewise/internal/config"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", config.PathFromEnv(), "path to a yaml config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// no logger yet
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application",
			zap.Error(err),
			zap.String("storage", cfg.Storage.Driver))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close application", zap.Error(err))
		}
	}()

	if err := a.Run(ctx); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
