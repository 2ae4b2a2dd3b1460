package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orders/internal/errors"
	"github.com/allisson/orders/internal/outbox/domain"
)

// requeueBatchSize bounds how many failed entries one RequeueAllFailed
// transaction locks.
const requeueBatchSize = 100

// StartCleanup deletes processed entries older than the configured retention
// on every cleanup tick until ctx is canceled.
func (uc *OutboxUseCase) StartCleanup(ctx context.Context) error {
	if uc.config.CleanupInterval <= 0 {
		return errNonPositiveInterval
	}
	if uc.config.Retention <= 0 {
		return errors.Wrap(errors.ErrInvalidInput, "retention must be greater than zero")
	}

	if uc.logger != nil {
		uc.logger.Info("starting outbox cleanup",
			slog.Duration("interval", uc.config.CleanupInterval),
			slog.Duration("retention", uc.config.Retention),
		)
	}

	ticker := time.NewTicker(uc.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if uc.logger != nil {
				uc.logger.Info("stopping outbox cleanup")
			}
			return ctx.Err()
		case <-ticker.C:
			count, err := uc.Cleanup(ctx, uc.config.Retention, false)
			if err != nil {
				if uc.logger != nil && ctx.Err() == nil {
					uc.logger.Error("failed to clean up outbox", slog.Any("error", err))
				}
				continue
			}
			if uc.logger != nil && count > 0 {
				uc.logger.Info("outbox cleanup completed", slog.Int64("deleted", count))
			}
		}
	}
}

// Cleanup deletes processed entries whose processed-at is older than retention.
// Pending and failed entries are never removed. With dryRun the matching
// entries are only counted.
func (uc *OutboxUseCase) Cleanup(ctx context.Context, retention time.Duration, dryRun bool) (int64, error) {
	if retention <= 0 {
		return 0, errors.Wrap(errors.ErrInvalidInput, "retention must be greater than zero")
	}
	before := uc.now().Add(-retention)
	return uc.outboxRepo.DeleteProcessedBefore(ctx, before, dryRun)
}

// Requeue moves one FAILED entry back to PENDING with a fresh retry budget.
func (uc *OutboxUseCase) Requeue(ctx context.Context, id uuid.UUID) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		entry, err := uc.outboxRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := entry.Requeue(uc.now()); err != nil {
			return err
		}
		if err := uc.outboxRepo.Update(ctx, entry); err != nil {
			return err
		}

		if uc.logger != nil {
			uc.logger.Info("outbox entry requeued",
				slog.String("outbox_id", entry.ID.String()),
				slog.String("event_type", entry.EventType),
			)
		}
		return nil
	})
}

// RequeueAllFailed moves every FAILED entry back to PENDING and returns how
// many were moved.
func (uc *OutboxUseCase) RequeueAllFailed(ctx context.Context) (int, error) {
	total := 0
	for {
		moved := 0
		err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
			moved = 0
			entries, err := uc.outboxRepo.ClaimFailed(ctx, requeueBatchSize)
			if err != nil {
				return err
			}
			now := uc.now()
			for _, entry := range entries {
				if err := entry.Requeue(now); err != nil {
					return err
				}
				if err := uc.outboxRepo.Update(ctx, entry); err != nil {
					return err
				}
				moved++
			}
			return nil
		})
		if err != nil {
			return total, err
		}
		total += moved
		if moved < requeueBatchSize {
			break
		}
	}

	if uc.logger != nil && total > 0 {
		uc.logger.Info("failed outbox entries requeued", slog.Int("count", total))
	}
	return total, nil
}

// Stats returns the number of entries per status. Statuses without entries
// are reported as zero.
func (uc *OutboxUseCase) Stats(ctx context.Context) (map[domain.Status]int64, error) {
	counts, err := uc.outboxRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := map[domain.Status]int64{
		domain.StatusPending:   0,
		domain.StatusProcessed: 0,
		domain.StatusFailed:    0,
	}
	for status, count := range counts {
		stats[status] = count
	}
	return stats, nil
}
