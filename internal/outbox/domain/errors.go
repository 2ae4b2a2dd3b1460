package domain

import (
	"github.com/allisson/orders/internal/errors"
)

var (
	ErrAggregateTypeRequired = errors.Wrap(errors.ErrInvalidInput, "aggregate type is required")
	ErrAggregateIDRequired   = errors.Wrap(errors.ErrInvalidInput, "aggregate id is required")
	ErrEventTypeRequired     = errors.Wrap(errors.ErrInvalidInput, "event type is required")
	ErrPayloadRequired       = errors.Wrap(errors.ErrInvalidInput, "payload is required")
)

// ErrEntryNotFound indicates the outbox entry does not exist.
var ErrEntryNotFound = errors.Wrap(errors.ErrNotFound, "outbox entry not found")

var (
	// ErrEntryAlreadyProcessed indicates an attempt to deliver an entry that was already delivered.
	ErrEntryAlreadyProcessed = errors.Wrap(errors.ErrConflict, "outbox entry already processed")

	// ErrEntryNotPending indicates a delivery outcome was recorded for an entry that is not pending.
	ErrEntryNotPending = errors.Wrap(errors.ErrConflict, "outbox entry is not pending")

	// ErrEntryNotFailed indicates a requeue of an entry that is not failed.
	ErrEntryNotFailed = errors.Wrap(errors.ErrConflict, "outbox entry is not failed")
)
