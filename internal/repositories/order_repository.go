package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freshmart/storefront/internal/models"
	"github.com/freshmart/storefront/internal/utils"
)

type OrderRepository interface {
	// BeginTx opens the transaction that scopes one commit attempt.
	BeginTx(ctx context.Context) (*sql.Tx, error)

	// InsertOrder creates the order row with placeholder totals. It
	// reports created=false on an id collision instead of erroring, so
	// the caller can retry with a fresh id without aborting the tx.
	InsertOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (bool, error)

	InsertLineItem(ctx context.Context, tx *sql.Tx, item *models.OrderLineItem) error

	// FinalizeOrder fills in the totals once every line is persisted.
	FinalizeOrder(ctx context.Context, tx *sql.Tx, orderID string, totalCount int64, totalAmount float64) error

	CountOrdersByUser(ctx context.Context, userID int64) (int, error)
	ListOrdersByUser(ctx context.Context, userID int64, page, size int) ([]models.Order, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

func (r *orderRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

func (r *orderRepository) InsertOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (bool, error) {

	query := `
		INSERT INTO orders (id, user_id, address_id, pay_method, status, total_count, total_amount, shipping_fee, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $6, NOW())
		ON CONFLICT (id) DO NOTHING
	`

	result, err := tx.ExecContext(ctx, query, order.ID, order.UserID, order.AddressID, order.PayMethod, order.Status, order.ShippingFee)
	if err != nil {
		return false, fmt.Errorf("failed to insert order: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return inserted == 1, nil
}

func (r *orderRepository) InsertLineItem(ctx context.Context, tx *sql.Tx, item *models.OrderLineItem) error {

	query := `
		INSERT INTO order_items (order_id, sku_id, quantity, price)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := tx.ExecContext(ctx, query, item.OrderID, item.SKUID, item.Quantity, item.Price); err != nil {
		return fmt.Errorf("failed to insert order item: %w", err)
	}

	return nil
}

func (r *orderRepository) FinalizeOrder(ctx context.Context, tx *sql.Tx, orderID string, totalCount int64, totalAmount float64) error {

	query := `
		UPDATE orders SET total_count = $1, total_amount = $2 WHERE id = $3
	`

	if _, err := tx.ExecContext(ctx, query, totalCount, totalAmount, orderID); err != nil {
		return fmt.Errorf("failed to finalize order totals: %w", err)
	}

	return nil
}

func (r *orderRepository) CountOrdersByUser(ctx context.Context, userID int64) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	query := `SELECT COUNT(*) FROM orders WHERE user_id = $1`

	if err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return total, nil
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID int64, page, size int) ([]models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	offset := (page - 1) * size

	query := `
		SELECT id, address_id, pay_method, status, total_count, total_amount, shipping_fee, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID, size, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	var orders []models.Order

	for rows.Next() {

		order := models.Order{UserID: userID}

		err := rows.Scan(&order.ID, &order.AddressID, &order.PayMethod, &order.Status, &order.TotalCount, &order.TotalAmount, &order.ShippingFee, &order.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemsQuery := `
		SELECT sku_id, quantity, price
		FROM order_items
		WHERE order_id = $1
	`

	for i := range orders {

		itemRows, err := r.DB.QueryContext(dbCtx, itemsQuery, orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get order items: %w", err)
		}

		var items []models.OrderLineItem

		for itemRows.Next() {

			item := models.OrderLineItem{OrderID: orders[i].ID}

			if err := itemRows.Scan(&item.SKUID, &item.Quantity, &item.Price); err != nil {
				itemRows.Close()
				return nil, fmt.Errorf("failed to scan order item: %w", err)
			}

			items = append(items, item)
		}

		itemRows.Close()

		if err := itemRows.Err(); err != nil {
			return nil, err
		}

		orders[i].Items = items
	}

	return orders, nil
}
