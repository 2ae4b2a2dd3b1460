package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/orders/internal/database"
	apperrors "github.com/allisson/orders/internal/errors"
	"github.com/allisson/orders/internal/order/domain"
	"github.com/allisson/orders/internal/order/usecase"
)

// MySQLOrderRepository implements order persistence for MySQL.
type MySQLOrderRepository struct {
	db *sql.DB
}

// NewMySQLOrderRepository creates a new MySQL order repository.
func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

// Create inserts the order and its items and sets the generated ID.
func (m *MySQLOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO orders (number, customer_id, status, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		order.Number,
		order.CustomerID,
		string(order.Status),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrOrderNumberConflict
		}
		return apperrors.Wrap(err, "failed to create order")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return apperrors.Wrap(err, "failed to get order id")
	}
	order.ID = id

	return insertItems(ctx, querier, questionPlaceholder, order)
}

// Update persists the order status and updated-at timestamp.
func (m *MySQLOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, string(order.Status), order.UpdatedAt, order.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update order")
	}
	return checkAffected(result)
}

// GetByID loads an order with its items.
func (m *MySQLOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return m.get(ctx, id, false)
}

// GetByIDForUpdate loads an order with its items and locks the order row.
func (m *MySQLOrderRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return m.get(ctx, id, true)
}

func (m *MySQLOrderRepository) get(ctx context.Context, id int64, forUpdate bool) (*domain.Order, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, number, customer_id, status, created_at, updated_at FROM orders WHERE id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	order, err := scanOrder(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := loadItems(ctx, querier, questionPlaceholder, order); err != nil {
		return nil, err
	}
	return order, nil
}

// List retrieves orders newest first, optionally filtered by customer.
func (m *MySQLOrderRepository) List(ctx context.Context, filter usecase.ListFilter) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, m.db)

	query, args := listQuery(questionPlaceholder, filter)
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list orders")
	}

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := loadItems(ctx, querier, questionPlaceholder, orders...); err != nil {
		return nil, err
	}
	return orders, nil
}
