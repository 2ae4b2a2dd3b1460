// Package repository provides data persistence implementations for outbox entries.
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

const outboxColumns = `id, aggregate_type, aggregate_id, event_type, payload, status, retry_count,
			  last_error, created_at, processed_at, next_attempt_at`

// PostgreSQLOutboxRepository handles outbox entry persistence for PostgreSQL.
type PostgreSQLOutboxRepository struct {
	db *sql.DB
}

// NewPostgreSQLOutboxRepository creates a new PostgreSQLOutboxRepository.
func NewPostgreSQLOutboxRepository(db *sql.DB) *PostgreSQLOutboxRepository {
	return &PostgreSQLOutboxRepository{db: db}
}

// Create inserts a new outbox entry. Must run inside the transaction that
// persists the business change.
func (r *PostgreSQLOutboxRepository) Create(ctx context.Context, entry *domain.OutboxEntry) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO outbox (` + outboxColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(
		ctx,
		query,
		entry.ID,
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

// ClaimPending locks due pending entries, oldest first. Rows locked by another
// processor are skipped.
func (r *PostgreSQLOutboxRepository) ClaimPending(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*domain.OutboxEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + outboxColumns + `
			  FROM outbox
			  WHERE status = $1 AND next_attempt_at <= $2
			  ORDER BY created_at ASC
			  LIMIT $3
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, string(domain.StatusPending), now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim pending outbox entries")
	}
	return scanEntries(rows, nil)
}

// ClaimFailed locks failed entries, oldest first.
func (r *PostgreSQLOutboxRepository) ClaimFailed(ctx context.Context, limit int) ([]*domain.OutboxEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + outboxColumns + `
			  FROM outbox
			  WHERE status = $1
			  ORDER BY created_at ASC
			  LIMIT $2
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, string(domain.StatusFailed), limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim failed outbox entries")
	}
	return scanEntries(rows, nil)
}

// GetByIDForUpdate loads an entry and locks its row.
func (r *PostgreSQLOutboxRepository) GetByIDForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*domain.OutboxEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + outboxColumns + `
			  FROM outbox
			  WHERE id = $1
			  FOR UPDATE`

	rows, err := querier.QueryContext(ctx, query, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get outbox entry")
	}
	entries, err := scanEntries(rows, nil)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrEntryNotFound
	}
	return entries[0], nil
}

// Update persists the delivery state of an entry. Payload and identity columns
// are never rewritten.
func (r *PostgreSQLOutboxRepository) Update(ctx context.Context, entry *domain.OutboxEntry) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE outbox
			  SET status = $1, retry_count = $2, last_error = $3, processed_at = $4, next_attempt_at = $5
			  WHERE id = $6`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(entry.Status),
		entry.RetryCount,
		entry.LastError,
		entry.ProcessedAt,
		entry.NextAttemptAt,
		entry.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox entry")
	}
	return checkAffected(result)
}

// DeleteProcessedBefore deletes processed entries older than before, or only
// counts them when dryRun is true.
func (r *PostgreSQLOutboxRepository) DeleteProcessedBefore(
	ctx context.Context,
	before time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	if dryRun {
		var count int64
		query := `SELECT COUNT(*) FROM outbox WHERE status = $1 AND processed_at < $2`
		err := querier.QueryRowContext(ctx, query, string(domain.StatusProcessed), before).Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count processed outbox entries")
		}
		return count, nil
	}

	query := `DELETE FROM outbox WHERE status = $1 AND processed_at < $2`
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
func (r *PostgreSQLOutboxRepository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, `SELECT status, COUNT(*) FROM outbox GROUP BY status`)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count outbox entries")
	}
	return scanCounts(rows)
}

// scanEntries reads outbox rows. decodeID converts the stored id when the
// driver does not scan directly into uuid.UUID.
func scanEntries(rows *sql.Rows, decodeID func([]byte) (uuid.UUID, error)) ([]*domain.OutboxEntry, error) {
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*domain.OutboxEntry, 0)
	for rows.Next() {
		var entry domain.OutboxEntry
		var status string
		var rawID []byte

		var idDest any = &entry.ID
		if decodeID != nil {
			idDest = &rawID
		}

		err := rows.Scan(
			idDest,
			&entry.AggregateType,
			&entry.AggregateID,
			&entry.EventType,
			&entry.Payload,
			&status,
			&entry.RetryCount,
			&entry.LastError,
			&entry.CreatedAt,
			&entry.ProcessedAt,
			&entry.NextAttemptAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbox entry")
		}

		if decodeID != nil {
			if entry.ID, err = decodeID(rawID); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal outbox entry id")
			}
		}
		entry.Status = domain.Status(status)
		entry.CreatedAt = entry.CreatedAt.UTC()
		entry.NextAttemptAt = entry.NextAttemptAt.UTC()
		if entry.ProcessedAt != nil {
			processedAt := entry.ProcessedAt.UTC()
			entry.ProcessedAt = &processedAt
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate outbox entries")
	}
	return entries, nil
}

func scanCounts(rows *sql.Rows) (map[domain.Status]int64, error) {
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[domain.Status]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbox count")
		}
		counts[domain.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate outbox counts")
	}
	return counts, nil
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}
