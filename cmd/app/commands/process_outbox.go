package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	outboxUseCase "github.com/allisson/orders/internal/outbox/usecase"
)

// RunProcessOutbox runs a single outbox batch and reports what happened to the claimed entries.
func RunProcessOutbox(
	ctx context.Context,
	useCase outboxUseCase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("processing outbox batch")

	result, err := useCase.ProcessEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to process outbox: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]interface{}{
			"skipped":   result.Skipped,
			"claimed":   result.Claimed,
			"processed": result.Processed,
			"retried":   result.Retried,
			"failed":    result.Failed,
			"deferred":  result.Deferred,
		}); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputProcessText(writer, result)
	}

	return nil
}

func outputProcessText(writer io.Writer, result outboxUseCase.BatchResult) {
	if result.Skipped {
		_, _ = fmt.Fprintln(writer, "Another outbox run is in progress, nothing was processed")
		return
	}

	_, _ = fmt.Fprintf(writer, "Claimed:    %d\n", result.Claimed)
	_, _ = fmt.Fprintf(writer, "Processed:  %d\n", result.Processed)
	_, _ = fmt.Fprintf(writer, "Retried:    %d\n", result.Retried)
	_, _ = fmt.Fprintf(writer, "Failed:     %d\n", result.Failed)
	_, _ = fmt.Fprintf(writer, "Deferred:   %d\n", result.Deferred)
}
