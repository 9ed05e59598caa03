package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adda-Baaj/typed-request/internal/app"
	"github.com/Adda-Baaj/typed-request/internal/config"
	"github.com/Adda-Baaj/typed-request/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "requester failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sugar, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("requester starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := app.NewRunner(cfg, nil, logger.Zap{S: sugar})
	if err != nil {
		logger.ErrorObj("failed to initialize requester", "error", err)
		return err
	}

	if _, err := runner.Run(ctx); err != nil {
		return fmt.Errorf("requester run: %w", err)
	}

	return nil
}
