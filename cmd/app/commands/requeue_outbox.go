package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	outboxUseCase "github.com/allisson/orders/internal/outbox/usecase"
)

// RunRequeueOutbox moves failed outbox entries back to pending. With an empty id
// every failed entry is requeued.
func RunRequeueOutbox(
	ctx context.Context,
	useCase outboxUseCase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	id string,
	format string,
) error {
	count := 0

	if id != "" {
		entryID, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("invalid outbox entry id: %w", err)
		}

		logger.Info("requeueing outbox entry", slog.String("outbox_id", entryID.String()))

		if err := useCase.Requeue(ctx, entryID); err != nil {
			return fmt.Errorf("failed to requeue outbox entry: %w", err)
		}
		count = 1
	} else {
		logger.Info("requeueing all failed outbox entries")

		requeued, err := useCase.RequeueAllFailed(ctx)
		if err != nil {
			return fmt.Errorf("failed to requeue outbox entries: %w", err)
		}
		count = requeued
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]interface{}{
			"id":    id,
			"count": count,
		}); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Requeued %d outbox entr(ies)\n", count)
	}

	logger.Info("outbox requeue completed", slog.Int("count", count))
	return nil
}
