package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orders/internal/database"
	apperrors "github.com/allisson/orders/internal/errors"
	"github.com/allisson/orders/internal/outbox/domain"
)

// MySQLOutboxRepository handles outbox entry persistence for MySQL.
// Ids are stored as BINARY(16).
type MySQLOutboxRepository struct {
	db *sql.DB
}

// NewMySQLOutboxRepository creates a new MySQLOutboxRepository.
func NewMySQLOutboxRepository(db *sql.DB) *MySQLOutboxRepository {
	return &MySQLOutboxRepository{db: db}
}

// Create inserts a new outbox entry.
func (r *MySQLOutboxRepository) Create(ctx context.Context, entry *domain.OutboxEntry) error {
	querier := database.GetTx(ctx, r.db)

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal outbox entry id")
	}

	query := `INSERT INTO outbox (` + outboxColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		entry.AggregateType,
		entry.AggregateID,
		entry.EventType,
		entry.Payload,
		string(entry.Status),
		entry.RetryCount,
		entry.LastError,
		entry.CreatedAt,
		entry.ProcessedAt,
		entry.NextAttemptAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox entry")
	}
	return nil
}

// ClaimPending locks due pending entries, oldest first, skipping locked rows.
func (r *MySQLOutboxRepository) ClaimPending(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*domain.OutboxEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + outboxColumns + `
			  FROM outbox
			  WHERE status = ? AND next_attempt_at <= ?
			  ORDER BY created_at ASC
			  LIMIT ?
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, string(domain.StatusPending), now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim pending outbox entries")
	}
	return scanEntries(rows, uuid.FromBytes)
}

// ClaimFailed locks failed entries, oldest first.
func (r *MySQLOutboxRepository) ClaimFailed(ctx context.Context, limit int) ([]*domain.OutboxEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + outboxColumns + `
			  FROM outbox
			  WHERE status = ?
			  ORDER BY created_at ASC
			  LIMIT ?
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, string(domain.StatusFailed), limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim failed outbox entries")
	}
	return scanEntries(rows, uuid.FromBytes)
}

// GetByIDForUpdate loads an entry and locks its row.
func (r *MySQLOutboxRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.OutboxEntry, error) {
	querier := database.GetTx(ctx, r.db)

	binID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal outbox entry id")
	}

	query := `SELECT ` + outboxColumns + `
			  FROM outbox
			  WHERE id = ?
			  FOR UPDATE`

	rows, err := querier.QueryContext(ctx, query, binID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get outbox entry")
	}
	entries, err := scanEntries(rows, uuid.FromBytes)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrEntryNotFound
	}
	return entries[0], nil
}

// Update persists the delivery state of an entry.
func (r *MySQLOutboxRepository) Update(ctx context.Context, entry *domain.OutboxEntry) error {
	querier := database.GetTx(ctx, r.db)

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal outbox entry id")
	}

	query := `UPDATE outbox
			  SET status = ?, retry_count = ?, last_error = ?, processed_at = ?, next_attempt_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(entry.Status),
		entry.RetryCount,
		entry.LastError,
		entry.ProcessedAt,
		entry.NextAttemptAt,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox entry")
	}
	return checkAffected(result)
}

// DeleteProcessedBefore deletes processed entries older than before, or only
// counts them when dryRun is true.
func (r *MySQLOutboxRepository) DeleteProcessedBefore(
	ctx context.Context,
	before time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	if dryRun {
		var count int64
		query := `SELECT COUNT(*) FROM outbox WHERE status = ? AND processed_at < ?`
		err := querier.QueryRowContext(ctx, query, string(domain.StatusProcessed), before).Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count processed outbox entries")
		}
		return count, nil
	}

	query := `DELETE FROM outbox WHERE status = ? AND processed_at < ?`
	result, err := querier.ExecContext(ctx, query, string(domain.StatusProcessed), before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete processed outbox entries")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return count, nil
}

// CountByStatus returns the number of entries for every status present.
func (r *MySQLOutboxRepository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, `SELECT status, COUNT(*) FROM outbox GROUP BY status`)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count outbox entries")
	}
	return scanCounts(rows)
}
