package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrProductGone       = errors.New("product does not exist")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InventoryRepository adjusts per-product stock and sales counters. All
// methods run inside a caller-owned transaction: the stock check and the
// order rows that depend on it must commit or roll back as one unit.
type InventoryRepository interface {
	// ReserveAndDecrement re-reads stock under a row lock, rejects the
	// reservation when quantity exceeds it, and otherwise persists
	// stock -= quantity, sales += quantity. Returns the locked row's unit
	// price, which the caller snapshots into the order line.
	ReserveAndDecrement(ctx context.Context, tx *sql.Tx, skuID int64, quantity int64) (float64, error)
}

type inventoryRepository struct {
	DB *sql.DB
}

func NewInventoryRepo(db *sql.DB) InventoryRepository {
	return &inventoryRepository{DB: db}
}

func (r *inventoryRepository) ReserveAndDecrement(ctx context.Context, tx *sql.Tx, skuID int64, quantity int64) (float64, error) {

	// FOR UPDATE serializes concurrent commits on the same product row:
	// the second committer blocks here and then observes the first's
	// decrement, so combined reservations can never oversell.
	query := `
		SELECT price, stock
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	var price float64
	var stock int64

	err := tx.QueryRowContext(ctx, query, skuID).Scan(&price, &stock)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrProductGone
		}
		return 0, fmt.Errorf("failed to lock product %d: %w", skuID, err)
	}

	if quantity > stock {
		return 0, ErrInsufficientStock
	}

	update := `
		UPDATE products
		SET stock = stock - $1, sales = sales + $1, updated_at = NOW()
		WHERE id = $2
	`

	if _, err := tx.ExecContext(ctx, update, quantity, skuID); err != nil {
		return 0, fmt.Errorf("failed to decrement stock for product %d: %w", skuID, err)
	}

	return price, nil
}
