package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/freshmart/storefront/internal/cart"
	apperrors "github.com/freshmart/storefront/internal/errors"
	"github.com/freshmart/storefront/internal/metrics"
	"github.com/freshmart/storefront/internal/models"
	repository "github.com/freshmart/storefront/internal/repositories"
)

// CartService runs the cart operations over whichever backend the request
// carries: the redis store for authenticated accounts, the cookie store for
// anonymous sessions. Product existence and stock rules are enforced here,
// so both backends stay plain key-value state.
type CartService struct {
	products repository.ProductRepository
}

func NewCartService(products repository.ProductRepository) *CartService {
	return &CartService{products: products}
}

// AddItem is delta-based: the requested quantity is added onto whatever the
// cart already holds. UpdateItem is the absolute counterpart.
func (s *CartService) AddItem(ctx context.Context, store cart.Store, req *models.AddCartItemRequest) (*models.AddCartItemResponse, error) {

	product, err := s.lookupProduct(ctx, req.SKUID)
	if err != nil {
		return nil, err
	}

	current, _, err := store.Get(ctx, req.SKUID)
	if err != nil {
		return nil, apperrors.InternalError("Failed to read cart").WithError(err)
	}

	quantity := current + req.Quantity

	// Stock is advisory here; the commit pipeline re-checks under a row
	// lock. Rejecting early just keeps obviously unfillable carts out.
	if quantity > product.Stock {
		return nil, apperrors.InsufficientStockError("Requested quantity exceeds available stock")
	}

	if err := store.Set(ctx, req.SKUID, quantity); err != nil {
		return nil, apperrors.InternalError("Failed to update cart").WithError(err)
	}

	metrics.ObserveCartOperation("add")

	total, err := store.TotalCount(ctx)
	if err != nil {
		return nil, apperrors.InternalError("Failed to count cart items").WithError(err)
	}

	return &models.AddCartItemResponse{CartCount: total}, nil
}

// UpdateItem overwrites the stored quantity. Repeating the same update is a
// no-op, which is what makes the endpoint safe to retry.
func (s *CartService) UpdateItem(ctx context.Context, store cart.Store, req *models.UpdateCartItemRequest) (*models.AddCartItemResponse, error) {

	product, err := s.lookupProduct(ctx, req.SKUID)
	if err != nil {
		return nil, err
	}

	if req.Quantity > product.Stock {
		return nil, apperrors.InsufficientStockError("Requested quantity exceeds available stock")
	}

	if err := store.Set(ctx, req.SKUID, req.Quantity); err != nil {
		return nil, apperrors.InternalError("Failed to update cart").WithError(err)
	}

	metrics.ObserveCartOperation("update")

	total, err := store.TotalCount(ctx)
	if err != nil {
		return nil, apperrors.InternalError("Failed to count cart items").WithError(err)
	}

	return &models.AddCartItemResponse{CartCount: total}, nil
}

// RemoveItem deletes the entry. Removing a sku that is not in the cart is a
// success, not an error.
func (s *CartService) RemoveItem(ctx context.Context, store cart.Store, req *models.DeleteCartItemRequest) (*models.AddCartItemResponse, error) {

	if err := store.Delete(ctx, req.SKUID); err != nil {
		return nil, apperrors.InternalError("Failed to update cart").WithError(err)
	}

	metrics.ObserveCartOperation("remove")

	total, err := store.TotalCount(ctx)
	if err != nil {
		return nil, apperrors.InternalError("Failed to count cart items").WithError(err)
	}

	return &models.AddCartItemResponse{CartCount: total}, nil
}

// CartInfo expands the stored entries against the live catalog. Entries
// whose product has since disappeared are skipped, not errors: the cart
// may legitimately outlive a delisted product.
func (s *CartService) CartInfo(ctx context.Context, store cart.Store) (*models.CartSummary, error) {

	entries, err := store.Snapshot(ctx)
	if err != nil {
		return nil, apperrors.InternalError("Failed to read cart").WithError(err)
	}

	summary := &models.CartSummary{Items: make([]models.CartItemView, 0, len(entries))}

	for skuID, quantity := range entries {

		product, err := s.products.GetProductByID(ctx, skuID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}

			return nil, apperrors.DatabaseError("Failed to load product").WithError(err)
		}

		amount := product.Price * float64(quantity)

		summary.Items = append(summary.Items, models.CartItemView{
			Product:  product,
			Quantity: quantity,
			Amount:   amount,
		})

		summary.TotalCount += quantity
		summary.TotalAmount += amount
	}

	return summary, nil
}

func (s *CartService) lookupProduct(ctx context.Context, skuID int64) (*models.Product, error) {

	product, err := s.products.GetProductByID(ctx, skuID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ProductNotFoundError("Product does not exist")
		}

		return nil, apperrors.DatabaseError("Failed to load product").WithError(err)
	}

	return product, nil
}
