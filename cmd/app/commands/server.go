package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/orders/internal/app"
	"github.com/allisson/orders/internal/config"
	outboxUseCase "github.com/allisson/orders/internal/outbox/usecase"
)

const shutdownTimeout = 30 * time.Second

// shutdowner is a server that can be stopped gracefully.
type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// RunServer starts the API server, the metrics server and, when enabled, the outbox
// processor and cleanup loops. Blocks until SIGINT/SIGTERM or a fatal server error.
// On shutdown the outbox loops are stopped first so that in-flight attempts are
// recorded, then the servers are drained.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	var outbox outboxUseCase.UseCase
	if cfg.OutboxEnabled {
		outbox, err = container.OutboxUseCase()
		if err != nil {
			return fmt.Errorf("failed to initialize outbox processor: %w", err)
		}
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serverErr := make(chan error, 2)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErr <- fmt.Errorf("api server error: %w", err)
		}
	}()

	servers := []shutdowner{server}
	if metricsServer != nil {
		servers = append(servers, metricsServer)
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				serverErr <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	waitOutbox := func() error { return nil }
	if outbox != nil {
		waitOutbox = startOutboxLoops(ctx, outbox, logger)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-serverErr:
		logger.Error("server error, initiating shutdown", slog.Any("error", runErr))
	}

	return errors.Join(runErr, shutdown(cancel, waitOutbox, servers, logger))
}

// startOutboxLoops runs the processor and cleanup loops until ctx is canceled.
// The returned function waits for both loops to return.
func startOutboxLoops(ctx context.Context, outbox outboxUseCase.UseCase, logger *slog.Logger) func() error {
	loops := map[string]func(context.Context) error{
		"outbox processor": outbox.Start,
		"outbox cleanup":   outbox.StartCleanup,
	}

	done := make(chan error, len(loops))
	for name, loop := range loops {
		go func() {
			err := loop(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background loop stopped", slog.String("loop", name), slog.Any("error", err))
				done <- fmt.Errorf("%s: %w", name, err)
				return
			}
			done <- nil
		}()
	}

	return func() error {
		var errs []error
		for range loops {
			errs = append(errs, <-done)
		}
		return errors.Join(errs...)
	}
}

// shutdown stops the background loops, waits for them and then drains the servers.
func shutdown(cancel context.CancelFunc, waitOutbox func() error, servers []shutdowner, logger *slog.Logger) error {
	cancel()

	var shutdownErrors []error
	if err := waitOutbox(); err != nil {
		shutdownErrors = append(shutdownErrors, err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, server := range servers {
		if err := server.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("server shutdown: %w", err))
		}
	}

	logger.Info("shutdown completed")
	return errors.Join(shutdownErrors...)
}
