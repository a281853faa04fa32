package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/freshmart/storefront/internal/api/middleware"
	"github.com/freshmart/storefront/internal/cart"
	"github.com/freshmart/storefront/internal/config"
	apperrors "github.com/freshmart/storefront/internal/errors"
	"github.com/freshmart/storefront/internal/metrics"
	"github.com/freshmart/storefront/internal/models"
	repository "github.com/freshmart/storefront/internal/repositories"
	"github.com/google/uuid"
)

// Commit pipeline stages, logged with every outcome so a stuck or failed
// commit can be placed precisely.
const (
	stageStarted    = "STARTED"
	stageValidating = "VALIDATING"
	stageReserving  = "RESERVING"
	stagePersisting = "PERSISTING"
	stageCommitted  = "COMMITTED"
	stageRolledBack = "ROLLED_BACK"
)

// How many times a colliding order id is regenerated before giving up.
const maxOrderIDAttempts = 5

type CheckoutService struct {
	orders    repository.OrderRepository
	inventory repository.InventoryRepository
	addresses repository.AddressRepository
	products  repository.ProductRepository
	cfg       *config.Checkout
}

func NewCheckoutService(orders repository.OrderRepository, inventory repository.InventoryRepository, addresses repository.AddressRepository, products repository.ProductRepository, cfg *config.Checkout) *CheckoutService {
	return &CheckoutService{
		orders:    orders,
		inventory: inventory,
		addresses: addresses,
		products:  products,
		cfg:       cfg,
	}
}

// BuildPreview assembles the order confirmation page data. With req.Count
// unset, quantities come from the cart; with it set (buy-now) the override
// quantity applies to every listed sku, is checked against stock, and is
// staged into the cart so the follow-up commit reads the same numbers.
func (s *CheckoutService) BuildPreview(ctx context.Context, userID int64, store cart.Store, req *models.PreviewRequest) (*models.OrderPreview, error) {

	preview := &models.OrderPreview{
		Lines:       make([]models.PreviewLine, 0, len(req.SKUIDs)),
		ShippingFee: s.cfg.ShippingFee,
	}

	for _, skuID := range req.SKUIDs {

		product, err := s.products.GetProductByID(ctx, skuID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperrors.ProductNotFoundError(fmt.Sprintf("Product %d does not exist", skuID))
			}

			return nil, apperrors.DatabaseError("Failed to load product").WithError(err)
		}

		var quantity int64

		if req.Count != nil {
			quantity = *req.Count

			// Preview is the only stock gate on the buy-now path before
			// commit, so it is enforced here; the from-cart path already
			// checked at add time.
			if quantity > product.Stock {
				return nil, apperrors.InsufficientStockError(fmt.Sprintf("Insufficient stock for product %d", skuID))
			}

			if err := s.stageBuyNowQuantity(ctx, store, skuID, quantity); err != nil {
				return nil, err
			}
		} else {
			stored, ok, err := store.Get(ctx, skuID)
			if err != nil {
				if errors.Is(err, cart.ErrCorruptEntry) {
					return nil, apperrors.ProductNotInCartError(fmt.Sprintf("Product %d has no usable cart entry", skuID))
				}

				return nil, apperrors.InternalError("Failed to read cart").WithError(err)
			}

			if !ok {
				return nil, apperrors.ProductNotInCartError(fmt.Sprintf("Product %d is not in the cart", skuID))
			}

			quantity = stored
		}

		amount := product.Price * float64(quantity)

		preview.Lines = append(preview.Lines, models.PreviewLine{
			Product:  product,
			Quantity: quantity,
			Amount:   amount,
		})

		preview.TotalCount += quantity
		preview.GoodsAmount += amount
	}

	preview.TotalAmount = preview.GoodsAmount + preview.ShippingFee
	preview.SKUIDs = joinSKUIDs(req.SKUIDs)

	if address, err := s.addresses.LatestAddressForUser(ctx, userID); err == nil {
		preview.DefaultAddress = address
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.DatabaseError("Failed to load default address").WithError(err)
	}

	return preview, nil
}

// stageBuyNowQuantity writes the buy-now override into the cart. The write
// is deliberate: the commit step reads quantities from the cart, so the
// preview and the commit must agree on them.
func (s *CheckoutService) stageBuyNowQuantity(ctx context.Context, store cart.Store, skuID, quantity int64) error {

	if err := store.Set(ctx, skuID, quantity); err != nil {
		return apperrors.InternalError("Failed to stage cart quantity").WithError(err)
	}

	return nil
}

// CommitOrder turns the previewed cart lines into a persisted order. The
// whole attempt runs in one read-committed transaction; every non-commit
// exit rolls back, so a failed commit leaves no order row, no line items
// and no stock change behind.
func (s *CheckoutService) CommitOrder(ctx context.Context, userID int64, store cart.Store, req *models.CommitOrderRequest) (*models.CommitOrderResponse, error) {

	logger := middleware.LoggerFromContext(ctx)

	stage := stageStarted

	response, err := s.runCommit(ctx, &stage, userID, store, req)
	if err != nil {

		result := stageRolledBack
		if appErr, ok := apperrors.IsAppError(err); ok {
			result = appErr.Code
		}

		metrics.ObserveCommit(result)
		logger.Warn("Order commit failed", slog.String("stage", stage), slog.Any("error", err))

		return nil, err
	}

	metrics.ObserveCommit("committed")
	logger.Info("Order committed", slog.String("orderId", response.OrderID), slog.Int64("totalCount", response.TotalCount))

	return response, nil
}

func (s *CheckoutService) runCommit(ctx context.Context, stage *string, userID int64, store cart.Store, req *models.CommitOrderRequest) (*models.CommitOrderResponse, error) {

	*stage = stageValidating

	skuIDs, err := parseSKUIDs(req.SKUIDs)
	if err != nil {
		return nil, err
	}

	payMethod := models.PayMethod(req.PayMethod)
	if !payMethod.Valid() {
		return nil, apperrors.InvalidPaymentMethodError("Unsupported payment method")
	}

	address, err := s.addresses.GetAddressByID(ctx, req.AddressID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.InvalidAddressError("Address does not exist")
		}

		return nil, apperrors.DatabaseError("Failed to load address").WithError(err)
	}

	if address.UserID != userID {
		return nil, apperrors.InvalidAddressError("Address does not belong to this account")
	}

	tx, err := s.orders.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.CommitFailedError("Failed to open transaction").WithError(err)
	}

	committed := false

	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				middleware.LoggerFromContext(ctx).Error("Rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	order := &models.Order{
		UserID:      userID,
		AddressID:   req.AddressID,
		PayMethod:   payMethod,
		Status:      models.OrderStatusUnpaid,
		ShippingFee: s.cfg.ShippingFee,
		CreatedAt:   time.Now(),
	}

	// Placeholder row first so the line items have a parent; totals are
	// filled in once every line is reserved.
	if err := s.insertOrderWithFreshID(ctx, tx, order); err != nil {
		return nil, err
	}

	*stage = stageReserving

	var totalCount int64
	var goodsAmount float64

	for _, skuID := range skuIDs {

		// A corrupt stored quantity counts as not-in-cart: the sku has no
		// usable quantity to commit.
		quantity, ok, err := store.Get(ctx, skuID)
		if err != nil {
			if errors.Is(err, cart.ErrCorruptEntry) {
				return nil, apperrors.ProductNotInCartError(fmt.Sprintf("Product %d has no usable cart entry", skuID))
			}

			return nil, apperrors.CommitFailedError("Failed to read cart").WithError(err)
		}

		if !ok {
			return nil, apperrors.ProductNotInCartError(fmt.Sprintf("Product %d is not in the cart", skuID))
		}

		// The locked row's price is the permanent snapshot for this line;
		// later catalog price changes never touch committed orders.
		price, err := s.inventory.ReserveAndDecrement(ctx, tx, skuID, quantity)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrProductGone):
				return nil, apperrors.ProductNotFoundError(fmt.Sprintf("Product %d does not exist", skuID))
			case errors.Is(err, repository.ErrInsufficientStock):
				return nil, apperrors.InsufficientStockError(fmt.Sprintf("Insufficient stock for product %d", skuID))
			default:
				return nil, apperrors.CommitFailedError("Failed to reserve stock").WithError(err)
			}
		}

		*stage = stagePersisting

		item := &models.OrderLineItem{
			OrderID:  order.ID,
			SKUID:    skuID,
			Quantity: quantity,
			Price:    price,
		}

		if err := s.orders.InsertLineItem(ctx, tx, item); err != nil {
			return nil, apperrors.CommitFailedError("Failed to persist order line").WithError(err)
		}

		totalCount += quantity
		goodsAmount += price * float64(quantity)

		*stage = stageReserving
	}

	*stage = stagePersisting

	totalAmount := goodsAmount + order.ShippingFee

	if err := s.orders.FinalizeOrder(ctx, tx, order.ID, totalCount, totalAmount); err != nil {
		return nil, apperrors.CommitFailedError("Failed to finalize order").WithError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.CommitFailedError("Failed to commit order").WithError(err)
	}

	committed = true
	*stage = stageCommitted

	// The order exists regardless of what happens to the cart now, so a
	// failed clear is logged and swallowed, never surfaced.
	if err := store.Clear(ctx, skuIDs); err != nil {
		middleware.LoggerFromContext(ctx).Error("Failed to clear committed cart entries", slog.String("orderId", order.ID), slog.Any("error", err))
	}

	return &models.CommitOrderResponse{
		OrderID:     order.ID,
		TotalCount:  totalCount,
		TotalAmount: totalAmount,
	}, nil
}

// insertOrderWithFreshID creates the placeholder order row. The id is the
// commit timestamp plus the account id, which can collide when one account
// commits twice within a second; a collision regenerates the id with a
// random suffix and retries inside the same transaction.
func (s *CheckoutService) insertOrderWithFreshID(ctx context.Context, tx *sql.Tx, order *models.Order) error {

	order.ID = generateOrderID(order.UserID)

	for attempt := 0; attempt < maxOrderIDAttempts; attempt++ {

		created, err := s.orders.InsertOrder(ctx, tx, order)
		if err != nil {
			return apperrors.CommitFailedError("Failed to create order").WithError(err)
		}

		if created {
			return nil
		}

		order.ID = generateOrderID(order.UserID) + "-" + uuid.NewString()[:8]
	}

	return apperrors.CommitFailedError("Failed to allocate a unique order id")
}

func generateOrderID(userID int64) string {
	return time.Now().Format("20060102150405") + strconv.FormatInt(userID, 10)
}

func parseSKUIDs(raw string) ([]int64, error) {

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.MissingParameterError("No products selected")
	}

	parts := strings.Split(raw, ",")
	skuIDs := make([]int64, 0, len(parts))

	for _, part := range parts {

		skuID, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, apperrors.ValidationError(fmt.Sprintf("Invalid sku id %q", part))
		}

		skuIDs = append(skuIDs, skuID)
	}

	return skuIDs, nil
}

func joinSKUIDs(skuIDs []int64) string {

	parts := make([]string, 0, len(skuIDs))
	for _, skuID := range skuIDs {
		parts = append(parts, strconv.FormatInt(skuID, 10))
	}

	return strings.Join(parts, ",")
}
