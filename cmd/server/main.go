package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/your-org/sitegen/internal/app"
	"github.com/your-org/sitegen/internal/config"
	"github.com/your-org/sitegen/internal/logging"
	"github.com/your-org/sitegen/internal/version"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version" || os.Args[1] == "version") {
		fmt.Println(version.String())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitegen config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.MustNew(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting sitegen", zap.String("version", version.Version))
	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Error("sitegen failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
