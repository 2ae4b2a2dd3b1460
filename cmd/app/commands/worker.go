package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/allisson/orders/internal/app"
	"github.com/allisson/orders/internal/config"
)

// RunWorker runs only the outbox processor and cleanup loops, plus the metrics
// server when metrics are enabled. Blocks until SIGINT/SIGTERM.
func RunWorker(ctx context.Context, version string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting outbox worker", slog.String("version", version))

	defer closeContainer(container, logger)

	outbox, err := container.OutboxUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize outbox processor: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serverErr := make(chan error, 1)
	var servers []shutdowner
	if metricsServer != nil {
		servers = append(servers, metricsServer)
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				serverErr <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	waitOutbox := startOutboxLoops(ctx, outbox, logger)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-serverErr:
		logger.Error("metrics server error, initiating shutdown", slog.Any("error", runErr))
	}

	return errors.Join(runErr, shutdown(cancel, waitOutbox, servers, logger))
}
