package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"payroll/internal/config"
	"payroll/internal/console/cli"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.ParseConsoleConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	decimal.MarshalJSONWithoutQuotes = true

	app, err := cli.NewApp(cfg, logger.WithField("base_url", cfg.BaseURL))
	if err != nil {
		logger.WithError(err).Error("failed to initialise console")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.Run(ctx)
}
