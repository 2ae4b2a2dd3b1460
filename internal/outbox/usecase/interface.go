// Package usecase drains the outbox ledger into the message broker and
// provides the maintenance operations around it.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/orders/internal/errors"
	"github.com/allisson/orders/internal/outbox/domain"
	customValidation "github.com/allisson/orders/internal/validation"
)

// OutboxRepository defines outbox ledger persistence operations.
type OutboxRepository interface {
	Create(ctx context.Context, entry *domain.OutboxEntry) error
	// ClaimPending locks up to limit pending entries due at now, oldest first,
	// skipping rows already locked by another transaction.
	ClaimPending(ctx context.Context, now time.Time, limit int) ([]*domain.OutboxEntry, error)
	// ClaimFailed locks up to limit failed entries, oldest first.
	ClaimFailed(ctx context.Context, limit int) ([]*domain.OutboxEntry, error)
	// GetByIDForUpdate loads one entry and locks it until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.OutboxEntry, error)
	Update(ctx context.Context, entry *domain.OutboxEntry) error
	// DeleteProcessedBefore removes processed entries whose processed-at is before
	// the given time. With dryRun it only counts them.
	DeleteProcessedBefore(ctx context.Context, before time.Time, dryRun bool) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int64, error)
}

// EventPublisher sends a message to the broker. A nil error means the broker
// accepted the message.
type EventPublisher interface {
	Publish(ctx context.Context, msg domain.Message) error
}

// UseCase defines the outbox processor operations.
type UseCase interface {
	// Start runs ProcessEvents on every tick until ctx is canceled.
	Start(ctx context.Context) error
	// StartCleanup runs Cleanup with the configured retention on every cleanup tick.
	StartCleanup(ctx context.Context) error
	// ProcessEvents runs one batch. Concurrent calls return immediately with Skipped set.
	ProcessEvents(ctx context.Context) (BatchResult, error)
	Cleanup(ctx context.Context, retention time.Duration, dryRun bool) (int64, error)
	Requeue(ctx context.Context, id uuid.UUID) error
	RequeueAllFailed(ctx context.Context) (int, error)
	Stats(ctx context.Context) (map[domain.Status]int64, error)
}

// Config holds outbox processor configuration.
type Config struct {
	Interval        time.Duration
	BatchSize       int
	MaxRetries      int
	Workers         int
	PublishTimeout  time.Duration
	RetryBackoff    time.Duration
	CleanupInterval time.Duration
	Retention       time.Duration
}

// Validate rejects tunables the processor loops cannot run with. Zero is
// allowed for RetryBackoff, PublishTimeout and Workers.
func (c Config) Validate() error {
	positive := validation.Min(time.Duration(1)).Error("must be greater than zero")

	err := validation.ValidateStruct(&c,
		validation.Field(&c.Interval, validation.Required, positive),
		validation.Field(&c.BatchSize, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxRetries, validation.Required, validation.Min(1)),
		validation.Field(&c.Workers, validation.Min(0)),
		validation.Field(&c.PublishTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.RetryBackoff, validation.Min(time.Duration(0))),
		validation.Field(&c.CleanupInterval, validation.Required, positive),
		validation.Field(&c.Retention, validation.Required, positive),
	)
	return customValidation.WrapValidationError(err)
}

// errNonPositiveInterval is returned by the loops when their tick interval is
// not positive.
var errNonPositiveInterval = errors.Wrap(errors.ErrInvalidInput, "interval must be greater than zero")

// BatchResult summarizes one processor run.
type BatchResult struct {
	// Skipped is set when another run was in progress.
	Skipped bool
	Claimed int
	// Processed entries were published and marked PROCESSED.
	Processed int
	// Retried entries failed and stay PENDING for a later run.
	Retried int
	// Failed entries exhausted their retries and were marked FAILED.
	Failed int
	// Deferred entries were claimed but not attempted because the run was
	// interrupted; they are left untouched.
	Deferred int
}
