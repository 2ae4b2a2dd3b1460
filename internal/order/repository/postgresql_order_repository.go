package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/orders/internal/database"
	apperrors "github.com/allisson/orders/internal/errors"
	"github.com/allisson/orders/internal/order/domain"
	"github.com/allisson/orders/internal/order/usecase"
)

// PostgreSQLOrderRepository implements order persistence for PostgreSQL.
type PostgreSQLOrderRepository struct {
	db *sql.DB
}

// NewPostgreSQLOrderRepository creates a new PostgreSQL order repository.
func NewPostgreSQLOrderRepository(db *sql.DB) *PostgreSQLOrderRepository {
	return &PostgreSQLOrderRepository{db: db}
}

// Create inserts the order and its items and sets the generated ID. A taken
// order number is reported as domain.ErrOrderNumberConflict.
func (p *PostgreSQLOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO orders (number, customer_id, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`

	err := querier.QueryRowContext(
		ctx,
		query,
		order.Number,
		order.CustomerID,
		string(order.Status),
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrOrderNumberConflict
		}
		return apperrors.Wrap(err, "failed to create order")
	}

	return insertItems(ctx, querier, dollarPlaceholder, order)
}

// Update persists the order status and updated-at timestamp.
func (p *PostgreSQLOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, string(order.Status), order.UpdatedAt, order.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update order")
	}
	return checkAffected(result)
}

// GetByID loads an order with its items.
func (p *PostgreSQLOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return p.get(ctx, id, false)
}

// GetByIDForUpdate loads an order with its items and locks the order row.
func (p *PostgreSQLOrderRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return p.get(ctx, id, true)
}

func (p *PostgreSQLOrderRepository) get(ctx context.Context, id int64, forUpdate bool) (*domain.Order, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, number, customer_id, status, created_at, updated_at FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	order, err := scanOrder(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := loadItems(ctx, querier, dollarPlaceholder, order); err != nil {
		return nil, err
	}
	return order, nil
}

// List retrieves orders newest first, optionally filtered by customer.
func (p *PostgreSQLOrderRepository) List(ctx context.Context, filter usecase.ListFilter) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, p.db)

	query, args := listQuery(dollarPlaceholder, filter)
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list orders")
	}

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := loadItems(ctx, querier, dollarPlaceholder, orders...); err != nil {
		return nil, err
	}
	return orders, nil
}
