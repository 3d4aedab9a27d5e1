package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payments_engine/internal/config"
	"payments_engine/internal/csvio"
	"payments_engine/internal/ledger"
	"payments_engine/internal/processor"
	"payments_engine/pkg/metrics"
)

const (
	appName = "payments_engine"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <transactions.csv>\n", os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)
	if err := run(os.Args[1], cfg, logger); err != nil {
		logger.Error("Run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// Stdout carries the snapshot, so logs go to stderr.
func setupLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler).With(slog.String("app", appName))
}

func run(path string, cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer input.Close()

	metricsCollector := metrics.NewMetricsCollector(logger)
	if cfg.MetricsAddr != "" {
		metricsServer := metricsCollector.StartMetricsServer(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsCollector.Shutdown(shutdownCtx, metricsServer); err != nil {
				logger.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
			}
		}()
	}

	accounts := ledger.NewSharded(cfg.Workers, cfg.QueueSize)
	txProcessor := processor.NewTransactionProcessor(accounts, metricsCollector, logger)

	if _, err := txProcessor.ProcessCSV(ctx, bufio.NewReader(input)); err != nil {
		return err
	}

	output := bufio.NewWriter(os.Stdout)
	if err := csvio.WriteSnapshot(output, accounts.Snapshot()); err != nil {
		return err
	}
	return output.Flush()
}
