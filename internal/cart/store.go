package cart

import (
	"context"
	"errors"
)

// ErrCorruptEntry marks a stored quantity that cannot be parsed back into
// an integer. Callers treat such an entry like an absent one: the sku has
// no usable cart quantity.
var ErrCorruptEntry = errors.New("corrupt cart entry")

// Store is the cart contract shared by both backends. A store is bound to
// one identity at construction: the redis backend to an account id, the
// cookie backend to the anonymous cart carried by the request itself.
// Quantities are plain key-value state here; product existence and stock
// rules live in the cart service, so both backends stay interchangeable.
type Store interface {
	// Get returns the stored quantity for a sku, ok=false when absent.
	Get(ctx context.Context, skuID int64) (int64, bool, error)

	// Set overwrites the quantity for a sku. Absolute, idempotent.
	Set(ctx context.Context, skuID int64, quantity int64) error

	// Delete removes the entry. Removing an absent sku is a success.
	Delete(ctx context.Context, skuID int64) error

	// Snapshot returns every (sku, quantity) pair for the identity.
	Snapshot(ctx context.Context) (map[int64]int64, error)

	// Clear removes exactly the listed skus, preserving the rest.
	Clear(ctx context.Context, skuIDs []int64) error

	// TotalCount is the sum of all stored quantities.
	TotalCount(ctx context.Context) (int64, error)
}
