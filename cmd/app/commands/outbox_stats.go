package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/allisson/orders/internal/outbox/domain"
	outboxUseCase "github.com/allisson/orders/internal/outbox/usecase"
)

// RunOutboxStats prints the number of outbox entries per status.
func RunOutboxStats(ctx context.Context, useCase outboxUseCase.UseCase, writer io.Writer, format string) error {
	stats, err := useCase.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read outbox stats: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]int64{
			"pending":   stats[domain.StatusPending],
			"processed": stats[domain.StatusProcessed],
			"failed":    stats[domain.StatusFailed],
		}); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
		return nil
	}

	_, _ = fmt.Fprintf(writer, "Pending:    %d\n", stats[domain.StatusPending])
	_, _ = fmt.Fprintf(writer, "Processed:  %d\n", stats[domain.StatusProcessed])
	_, _ = fmt.Fprintf(writer, "Failed:     %d\n", stats[domain.StatusFailed])
	return nil
}
