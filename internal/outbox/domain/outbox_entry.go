// Package domain defines the outbox ledger entry and its delivery state machine.
//
// An entry is written in the same transaction as the business change it
// describes and is afterwards mutated only by the outbox processor:
//
//	PENDING --publish ok--------------------------> PROCESSED
//	PENDING --publish failed, retries < max-------> PENDING (retry count + 1)
//	PENDING --publish failed, retries reach max---> FAILED
//
// PROCESSED and FAILED are terminal for the processor. A FAILED entry returns
// to PENDING only through an explicit operator requeue.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the delivery state of an outbox entry.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusProcessed Status = "PROCESSED"
	StatusFailed    Status = "FAILED"
)

// maxErrorLength bounds the stored failure message.
const maxErrorLength = 1000

// OutboxEntry is one event waiting to be delivered to the message broker.
type OutboxEntry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	// Payload is the serialized event body. It is written once and never modified.
	Payload    string
	Status     Status
	RetryCount int
	LastError  *string
	CreatedAt  time.Time
	// ProcessedAt is set when the entry reaches a terminal state.
	ProcessedAt *time.Time
	// NextAttemptAt is the earliest time the processor may pick the entry up again.
	NextAttemptAt time.Time
}

// NewOutboxEntry builds a pending entry for an event of the given aggregate.
func NewOutboxEntry(aggregateType, aggregateID, eventType, payload string) (*OutboxEntry, error) {
	if strings.TrimSpace(aggregateType) == "" {
		return nil, ErrAggregateTypeRequired
	}
	if strings.TrimSpace(aggregateID) == "" {
		return nil, ErrAggregateIDRequired
	}
	if strings.TrimSpace(eventType) == "" {
		return nil, ErrEventTypeRequired
	}
	if strings.TrimSpace(payload) == "" {
		return nil, ErrPayloadRequired
	}

	now := Now()
	return &OutboxEntry{
		ID:            uuid.Must(uuid.NewV7()),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		Status:        StatusPending,
		CreatedAt:     now,
		NextAttemptAt: now,
	}, nil
}

// MarkProcessed records a successful delivery.
func (e *OutboxEntry) MarkProcessed(now time.Time) error {
	switch e.Status {
	case StatusProcessed:
		return ErrEntryAlreadyProcessed
	case StatusFailed:
		return ErrEntryNotPending
	}

	e.Status = StatusProcessed
	e.ProcessedAt = &now
	return nil
}

// RecordFailure records a failed delivery attempt. The retry count is
// incremented and the entry becomes FAILED once it reaches maxRetries;
// maxRetries counts failed attempts, so with 3 the third failure is final.
// Otherwise it stays PENDING and is not eligible again before now plus an
// exponential delay derived from backoff.
func (e *OutboxEntry) RecordFailure(reason string, maxRetries int, backoff time.Duration, now time.Time) error {
	if e.Status != StatusPending {
		if e.Status == StatusProcessed {
			return ErrEntryAlreadyProcessed
		}
		return ErrEntryNotPending
	}

	if len(reason) > maxErrorLength {
		reason = strings.ToValidUTF8(reason[:maxErrorLength], "")
	}
	e.RetryCount++
	e.LastError = &reason

	if !e.CanRetry(maxRetries) {
		e.Status = StatusFailed
		e.ProcessedAt = &now
		return nil
	}

	e.NextAttemptAt = now.Add(retryDelay(backoff, e.RetryCount))
	return nil
}

// CanRetry reports whether the entry is pending and still under the retry ceiling.
func (e *OutboxEntry) CanRetry(maxRetries int) bool {
	return e.Status == StatusPending && e.RetryCount < maxRetries
}

// Requeue moves a FAILED entry back to PENDING with a fresh retry budget.
func (e *OutboxEntry) Requeue(now time.Time) error {
	if e.Status != StatusFailed {
		return ErrEntryNotFailed
	}

	e.Status = StatusPending
	e.RetryCount = 0
	e.ProcessedAt = nil
	e.NextAttemptAt = now
	return nil
}

// Now returns the current UTC time truncated to microseconds, the precision
// of the outbox timestamp columns.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// retryDelay doubles backoff for every retry already consumed, capped at one hour.
func retryDelay(backoff time.Duration, retryCount int) time.Duration {
	const maxDelay = time.Hour

	if backoff <= 0 || retryCount <= 0 {
		return 0
	}

	delay := backoff
	for i := 1; i < retryCount; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	return delay
}
