package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/orders/internal/database"
	"github.com/allisson/orders/internal/errors"
	"github.com/allisson/orders/internal/metrics"
	"github.com/allisson/orders/internal/outbox/domain"
)

const (
	metricsDomain    = "outbox"
	publishOperation = "publish"
)

// OutboxUseCase publishes pending outbox entries and records the outcome of
// every attempt in the ledger.
type OutboxUseCase struct {
	config          Config
	txManager       database.TxManager
	outboxRepo      OutboxRepository
	publisher       EventPublisher
	businessMetrics metrics.BusinessMetrics
	logger          *slog.Logger
	running         atomic.Bool
	now             func() time.Time
}

// NewOutboxUseCase creates a new OutboxUseCase.
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxRepository,
	publisher EventPublisher,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *OutboxUseCase {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &OutboxUseCase{
		config:          config,
		txManager:       txManager,
		outboxRepo:      outboxRepo,
		publisher:       publisher,
		businessMetrics: businessMetrics,
		logger:          logger,
		now:             domain.Now,
	}
}

// Start runs the outbox processing loop until ctx is canceled.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	if uc.config.Interval <= 0 {
		return errNonPositiveInterval
	}

	if uc.logger != nil {
		uc.logger.Info("starting outbox processor",
			slog.Duration("interval", uc.config.Interval),
			slog.Int("batch_size", uc.config.BatchSize),
			slog.Int("max_retries", uc.config.MaxRetries),
			slog.Int("workers", uc.config.Workers),
		)
	}

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if uc.logger != nil {
				uc.logger.Info("stopping outbox processor")
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := uc.ProcessEvents(ctx); err != nil && ctx.Err() == nil {
				if uc.logger != nil {
					uc.logger.Error("failed to process outbox batch", slog.Any("error", err))
				}
			}
		}
	}
}

// outcome is the result of one publish attempt.
type outcome struct {
	attempted bool
	err       error
}

// ProcessEvents claims one batch of due entries, publishes them and records
// every result in the same transaction that holds the claim.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) (BatchResult, error) {
	if !uc.running.CompareAndSwap(false, true) {
		if uc.logger != nil {
			uc.logger.Debug("outbox batch already running, skipping")
		}
		return BatchResult{Skipped: true}, nil
	}
	defer uc.running.Store(false)

	if err := ctx.Err(); err != nil {
		return BatchResult{}, err
	}
	if uc.config.BatchSize <= 0 {
		return BatchResult{}, errors.Wrap(errors.ErrInvalidInput, "batch size must be greater than zero")
	}

	var result BatchResult

	// The ledger transaction outlives a shutdown signal so that attempts already
	// made are recorded. Only starting new attempts observes ctx.
	txCtx := context.WithoutCancel(ctx)
	err := uc.txManager.WithTx(txCtx, func(txCtx context.Context) error {
		result = BatchResult{}

		entries, err := uc.outboxRepo.ClaimPending(txCtx, uc.now(), uc.config.BatchSize)
		if err != nil {
			return err
		}
		result.Claimed = len(entries)
		if len(entries) == 0 {
			return nil
		}

		outcomes := uc.publishAll(ctx, entries)

		for i, entry := range entries {
			o := outcomes[i]
			if !o.attempted {
				result.Deferred++
				continue
			}
			if err := uc.record(txCtx, entry, o.err, &result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	if uc.logger != nil && result.Claimed > 0 {
		uc.logger.Info("outbox batch processed",
			slog.Int("claimed", result.Claimed),
			slog.Int("processed", result.Processed),
			slog.Int("retried", result.Retried),
			slog.Int("failed", result.Failed),
			slog.Int("deferred", result.Deferred),
		)
	}
	return result, nil
}

// publishAll publishes entries with at most config.Workers in flight. Entries
// not started before ctx is canceled are reported as not attempted.
func (uc *OutboxUseCase) publishAll(ctx context.Context, entries []*domain.OutboxEntry) []outcome {
	outcomes := make([]outcome, len(entries))

	var g errgroup.Group
	g.SetLimit(uc.config.Workers)
	for i, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcomes[i] = outcome{attempted: true, err: uc.publish(ctx, entry)}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (uc *OutboxUseCase) publish(ctx context.Context, entry *domain.OutboxEntry) error {
	publishCtx := context.WithoutCancel(ctx)
	if uc.config.PublishTimeout > 0 {
		var cancel context.CancelFunc
		publishCtx, cancel = context.WithTimeout(publishCtx, uc.config.PublishTimeout)
		defer cancel()
	}

	return uc.publisher.Publish(publishCtx, uc.message(entry))
}

func (uc *OutboxUseCase) message(entry *domain.OutboxEntry) domain.Message {
	routingKey := RoutingKey(entry.EventType)
	return domain.Message{
		EventType:  entry.EventType,
		RoutingKey: routingKey,
		Payload:    []byte(entry.Payload),
		Headers: map[string]string{
			domain.HeaderEventType:     entry.EventType,
			domain.HeaderAggregateType: entry.AggregateType,
			domain.HeaderAggregateID:   entry.AggregateID,
			domain.HeaderOutboxID:      entry.ID.String(),
			domain.HeaderRoutingKey:    routingKey,
			domain.HeaderTimestamp:     uc.now().Format(time.RFC3339Nano),
			domain.HeaderContentType:   "application/json",
		},
	}
}

// record applies one publish outcome to the entry and persists it.
func (uc *OutboxUseCase) record(
	ctx context.Context,
	entry *domain.OutboxEntry,
	publishErr error,
	result *BatchResult,
) error {
	now := uc.now()

	if publishErr == nil {
		if err := entry.MarkProcessed(now); err != nil {
			return err
		}
		if err := uc.outboxRepo.Update(ctx, entry); err != nil {
			return err
		}
		result.Processed++
		uc.businessMetrics.RecordOperation(ctx, metricsDomain, publishOperation, "success")
		return nil
	}

	if err := entry.RecordFailure(
		publishErr.Error(),
		uc.config.MaxRetries,
		uc.config.RetryBackoff,
		now,
	); err != nil {
		return err
	}
	if err := uc.outboxRepo.Update(ctx, entry); err != nil {
		return err
	}

	if entry.Status == domain.StatusFailed {
		result.Failed++
		uc.businessMetrics.RecordOperation(ctx, metricsDomain, publishOperation, "failed")
		if uc.logger != nil {
			uc.logger.Error("outbox entry failed permanently",
				slog.String("outbox_id", entry.ID.String()),
				slog.String("event_type", entry.EventType),
				slog.Int("retry_count", entry.RetryCount),
				slog.Any("error", publishErr),
			)
		}
		return nil
	}

	result.Retried++
	uc.businessMetrics.RecordOperation(ctx, metricsDomain, publishOperation, "retry")
	if uc.logger != nil {
		uc.logger.Warn("outbox entry publish failed, will retry",
			slog.String("outbox_id", entry.ID.String()),
			slog.String("event_type", entry.EventType),
			slog.Int("retry_count", entry.RetryCount),
			slog.Time("next_attempt_at", entry.NextAttemptAt),
			slog.Any("error", publishErr),
		)
	}
	return nil
}
