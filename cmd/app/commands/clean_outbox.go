package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	outboxUseCase "github.com/allisson/orders/internal/outbox/usecase"
)

// RunCleanOutbox deletes processed outbox entries older than the given number of days.
// Supports dry-run mode to preview the deletion count and both text/JSON output formats.
func RunCleanOutbox(
	ctx context.Context,
	useCase outboxUseCase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if days <= 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning outbox",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	count, err := useCase.Cleanup(ctx, time.Duration(days)*24*time.Hour, dryRun)
	if err != nil {
		return fmt.Errorf("failed to clean outbox: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]interface{}{
			"count":   count,
			"days":    days,
			"dry_run": dryRun,
		}); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else if dryRun {
		_, _ = fmt.Fprintf(writer,
			"Dry-run mode: Would delete %d processed outbox entr(ies) older than %d day(s)\n", count, days)
	} else {
		_, _ = fmt.Fprintf(writer,
			"Successfully deleted %d processed outbox entr(ies) older than %d day(s)\n", count, days)
	}

	logger.Info("outbox cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}
