// Package repository provides data persistence implementations for orders.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/allisson/orders/internal/database"
	apperrors "github.com/allisson/orders/internal/errors"
	"github.com/allisson/orders/internal/order/domain"
	"github.com/allisson/orders/internal/order/usecase"
)

// placeholder renders the n-th (1-based) bind parameter of a dialect.
type placeholder func(n int) string

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }

// scanOrder reads one orders row.
func scanOrder(row interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	var order domain.Order
	var status string

	err := row.Scan(
		&order.ID,
		&order.Number,
		&order.CustomerID,
		&status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan order")
	}

	order.Status = domain.OrderStatus(status)
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()
	return &order, nil
}

func scanOrders(rows *sql.Rows) ([]*domain.Order, error) {
	defer func() {
		_ = rows.Close()
	}()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate orders")
	}
	return orders, nil
}

// insertItems stores the items of an order keeping their position.
func insertItems(ctx context.Context, querier database.Querier, ph placeholder, order *domain.Order) error {
	query := fmt.Sprintf(
		`INSERT INTO order_items (order_id, position, product_id, product_name, quantity, unit_price)
			  VALUES (%s, %s, %s, %s, %s, %s)`,
		ph(1), ph(2), ph(3), ph(4), ph(5), ph(6),
	)

	for i, item := range order.Items {
		_, err := querier.ExecContext(
			ctx,
			query,
			order.ID,
			i,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.UnitPrice,
		)
		if err != nil {
			return apperrors.Wrap(err, "failed to create order item")
		}
	}
	return nil
}

// loadItems attaches the stored items to every order in a single query.
func loadItems(ctx context.Context, querier database.Querier, ph placeholder, orders ...*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Order, len(orders))
	marks := make([]string, 0, len(orders))
	args := make([]any, 0, len(orders))
	for i, order := range orders {
		byID[order.ID] = order
		order.Items = make([]domain.Item, 0)
		marks = append(marks, ph(i+1))
		args = append(args, order.ID)
	}

	query := `SELECT order_id, product_id, product_name, quantity, unit_price
			  FROM order_items
			  WHERE order_id IN (` + strings.Join(marks, ", ") + `)
			  ORDER BY order_id, position`

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrap(err, "failed to load order items")
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var orderID int64
		var item domain.Item
		err := rows.Scan(&orderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice)
		if err != nil {
			return apperrors.Wrap(err, "failed to scan order item")
		}
		if order, ok := byID[orderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.Wrap(err, "failed to iterate order items")
	}
	return nil
}

// listQuery builds the paged listing query, newest orders first.
func listQuery(ph placeholder, filter usecase.ListFilter) (string, []any) {
	query := `SELECT id, number, customer_id, status, created_at, updated_at FROM orders`
	args := make([]any, 0, 3)

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += ` WHERE customer_id = ` + ph(len(args))
	}

	args = append(args, filter.Limit)
	query += ` ORDER BY id DESC LIMIT ` + ph(len(args))
	args = append(args, filter.Offset)
	query += ` OFFSET ` + ph(len(args))

	return query, args
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
