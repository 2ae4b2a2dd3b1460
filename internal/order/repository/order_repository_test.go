package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/orders/internal/errors"
	"github.com/allisson/orders/internal/order/domain"
	"github.com/allisson/orders/internal/order/usecase"
)

var (
	orderColumns = []string{"id", "number", "customer_id", "status", "created_at", "updated_at"}
	itemColumns  = []string{"order_id", "product_id", "product_name", "quantity", "unit_price"}
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, mock
}

func newOrder(t *testing.T) *domain.Order {
	t.Helper()

	keyboard, err := domain.NewItem(1, "Keyboard", 2, decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	mouse, err := domain.NewItem(2, "Mouse", 1, decimal.RequireFromString("150.00"))
	require.NoError(t, err)

	order, err := domain.NewOrder(42, []domain.Item{keyboard, mouse})
	require.NoError(t, err)
	return order
}

func TestPostgreSQLOrderRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLOrderRepository(db)
		order := newOrder(t)

		mock.ExpectQuery(`INSERT INTO orders .* RETURNING id`).
			WithArgs(order.Number, int64(42), "PENDING", order.CreatedAt, order.UpdatedAt).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(int64(7), 0, int64(1), "Keyboard", 2, "50").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(int64(7), 1, int64(2), "Mouse", 1, "150").
			WillReturnResult(sqlmock.NewResult(2, 1))

		err := repo.Create(context.Background(), order)

		require.NoError(t, err)
		assert.Equal(t, int64(7), order.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NumberConflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLOrderRepository(db)

		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(context.Background(), newOrder(t))

		assert.ErrorIs(t, err, domain.ErrOrderNumberConflict)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("ItemInsertFails", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLOrderRepository(db)

		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectExec(`INSERT INTO order_items`).
			WillReturnError(errors.New("disk full"))

		err := repo.Create(context.Background(), newOrder(t))

		assert.ErrorContains(t, err, "failed to create order item")
	})
}

func TestPostgreSQLOrderRepository_GetByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLOrderRepository(db)
		now := time.Now().UTC()

		mock.ExpectQuery(`SELECT id, number, customer_id, status, created_at, updated_at FROM orders WHERE id = \$1$`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(7, "ORD-1A2B3C4D", 42, "PENDING", now, now))
		mock.ExpectQuery(`FROM order_items\s+WHERE order_id IN \(\$1\)\s+ORDER BY order_id, position`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(itemColumns).
				AddRow(7, 1, "Keyboard", 2, "50.00").
				AddRow(7, 2, "Mouse", 1, "150.00"))

		order, err := repo.GetByID(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, "ORD-1A2B3C4D", order.Number)
		assert.Equal(t, domain.OrderStatusPending, order.Status)
		require.Len(t, order.Items, 2)
		assert.Equal(t, "Keyboard", order.Items[0].ProductName)
		assert.Equal(t, "250.00", order.Total().StringFixed(2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLOrderRepository(db)

		mock.ExpectQuery(`FROM orders WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(orderColumns))

		_, err := repo.GetByID(context.Background(), 99)

		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestPostgreSQLOrderRepository_GetByIDForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLOrderRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(7, "ORD-1A2B3C4D", 42, "CONFIRMED", now, now))
	mock.ExpectQuery(`FROM order_items`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(7, 1, "Keyboard", 1, "10.00"))

	order, err := repo.GetByIDForUpdate(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLOrderRepository_Update(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLOrderRepository(db)
		order := newOrder(t)
		order.ID = 7
		require.NoError(t, order.Cancel())

		mock.ExpectExec(`UPDATE orders SET status = \$1, updated_at = \$2 WHERE id = \$3`).
			WithArgs("CANCELED", order.UpdatedAt, int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), order)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLOrderRepository(db)

		mock.ExpectExec(`UPDATE orders`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), newOrder(t))

		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestPostgreSQLOrderRepository_List(t *testing.T) {
	t.Run("FilteredByCustomer", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLOrderRepository(db)
		now := time.Now().UTC()
		customerID := int64(42)

		mock.ExpectQuery(`FROM orders WHERE customer_id = \$1 ORDER BY id DESC LIMIT \$2 OFFSET \$3`).
			WithArgs(int64(42), 20, 0).
			WillReturnRows(sqlmock.NewRows(orderColumns).
				AddRow(9, "ORD-00000009", 42, "PENDING", now, now).
				AddRow(8, "ORD-00000008", 42, "CANCELED", now, now))
		mock.ExpectQuery(`FROM order_items\s+WHERE order_id IN \(\$1, \$2\)`).
			WithArgs(int64(9), int64(8)).
			WillReturnRows(sqlmock.NewRows(itemColumns).
				AddRow(8, 3, "Cable", 1, "5.00").
				AddRow(9, 1, "Keyboard", 1, "50.00").
				AddRow(9, 2, "Mouse", 2, "25.00"))

		orders, err := repo.List(context.Background(), usecase.ListFilter{CustomerID: &customerID, Limit: 20})

		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, int64(9), orders[0].ID)
		assert.Len(t, orders[0].Items, 2)
		assert.Len(t, orders[1].Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLOrderRepository(db)

		mock.ExpectQuery(`FROM orders ORDER BY id DESC LIMIT \$1 OFFSET \$2`).
			WithArgs(10, 30).
			WillReturnRows(sqlmock.NewRows(orderColumns))

		orders, err := repo.List(context.Background(), usecase.ListFilter{Offset: 30, Limit: 10})

		require.NoError(t, err)
		assert.NotNil(t, orders)
		assert.Empty(t, orders)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLOrderRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLOrderRepository(db)
		order := newOrder(t)

		mock.ExpectExec(`INSERT INTO orders \(number, customer_id, status, created_at, updated_at\)\s+VALUES \(\?, \?, \?, \?, \?\)`).
			WithArgs(order.Number, int64(42), "PENDING", order.CreatedAt, order.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(11, 1))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(int64(11), 0, int64(1), "Keyboard", 2, "50").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(int64(11), 1, int64(2), "Mouse", 1, "150").
			WillReturnResult(sqlmock.NewResult(2, 1))

		err := repo.Create(context.Background(), order)

		require.NoError(t, err)
		assert.Equal(t, int64(11), order.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NumberConflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLOrderRepository(db)

		mock.ExpectExec(`INSERT INTO orders`).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		err := repo.Create(context.Background(), newOrder(t))

		assert.ErrorIs(t, err, domain.ErrOrderNumberConflict)
	})
}

func TestMySQLOrderRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLOrderRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM orders WHERE id = \?$`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(3, "ORD-ABCDEF01", 5, "PENDING", now, now))
	mock.ExpectQuery(`WHERE order_id IN \(\?\)`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(3, 1, "Keyboard", 3, "19.99"))

	order, err := repo.GetByID(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "59.97", order.Total().StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOrderRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLOrderRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM orders ORDER BY id DESC LIMIT \? OFFSET \?`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(1, "ORD-00000001", 5, "PENDING", now, now))
	mock.ExpectQuery(`WHERE order_id IN \(\?\)`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(1, 1, "Keyboard", 1, "10.00"))

	orders, err := repo.List(context.Background(), usecase.ListFilter{Limit: 50})

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
