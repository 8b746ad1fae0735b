package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bartgrantham/gofm/internal/config"
)

func main() {
	var logLevel slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &logLevel}))

	var configPath string
	flag.StringVar(&configPath, "c", "", "Path to the configuration file")
	flag.Parse()

	if configPath == "" {
		logger.Error("no configuration file provided")
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to load configuration file: %s", err.Error()), slog.String("path", configPath))
		os.Exit(1)
	}
	if err = config.Validate(cfg); err != nil {
		logger.Error(fmt.Sprintf("invalid configuration: %s", err.Error()), slog.String("path", configPath))
		os.Exit(1)
	}

	_ = logLevel.UnmarshalText([]byte(cfg.Settings.LogLevel))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	station, err := run(ctx, cfg, logger)
	if station != nil {
		printStats(os.Stdout, station)
	}
	if err != nil {
		logger.Error(err.Error())

		cancel()
		os.Exit(1)
	}
}
