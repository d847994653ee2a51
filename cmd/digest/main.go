package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-news-digest/internal/app"
	"github.com/samvad-hq/samvad-news-digest/internal/config"
	"github.com/samvad-hq/samvad-news-digest/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "digest start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("digest starting", "config", cfg.Redacted())
	if cfg.SecretKey == config.DefaultSecretKey {
		logger.WarnObj("using the default secret key; set SECRET_KEY outside local runs", "app_env", cfg.Env)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	digestApp, err := app.New(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize digest app", "error", err.Error())
		return err
	}

	if err := digestApp.Run(ctx); err != nil {
		return fmt.Errorf("digest run: %w", err)
	}
	return nil
}
