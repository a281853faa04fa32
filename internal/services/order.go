package service

import (
	"context"

	"github.com/freshmart/storefront/internal/config"
	apperrors "github.com/freshmart/storefront/internal/errors"
	"github.com/freshmart/storefront/internal/models"
	repository "github.com/freshmart/storefront/internal/repositories"
)

// OrderService is the read side of orders: committed rows projected into
// display views, never mutated.
type OrderService struct {
	orders repository.OrderRepository
	cfg    *config.Checkout
}

func NewOrderService(orders repository.OrderRepository, cfg *config.Checkout) *OrderService {
	return &OrderService{orders: orders, cfg: cfg}
}

// ListOrders returns the account's orders newest-first. An out-of-range
// page (including past-the-end) clamps to page 1 instead of erroring.
func (s *OrderService) ListOrders(ctx context.Context, userID int64, page int) (*models.PaginatedResponse, error) {

	size := s.cfg.OrderPageSize

	total, err := s.orders.CountOrdersByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to count orders").WithError(err)
	}

	totalPages := (total + size - 1) / size
	if page < 1 || page > totalPages {
		page = 1
	}

	orders, err := s.orders.ListOrdersByUser(ctx, userID, page, size)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to list orders").WithError(err)
	}

	views := make([]models.OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, buildOrderView(&orders[i]))
	}

	return &models.PaginatedResponse{
		Data:     views,
		Total:    total,
		Page:     page,
		PageSize: size,
	}, nil
}

// buildOrderView attaches display labels and computed line amounts to a
// stored order. Amounts come from the snapshot prices persisted at commit
// time, never from the live catalog.
func buildOrderView(order *models.Order) models.OrderView {

	view := models.OrderView{
		ID:             order.ID,
		Status:         order.Status,
		StatusLabel:    order.Status.Label(),
		PayMethod:      order.PayMethod,
		PayMethodLabel: order.PayMethod.Label(),
		TotalCount:     order.TotalCount,
		TotalAmount:    order.TotalAmount,
		ShippingFee:    order.ShippingFee,
		CreatedAt:      order.CreatedAt,
		Items:          make([]models.OrderLineView, 0, len(order.Items)),
	}

	for _, item := range order.Items {
		view.Items = append(view.Items, models.OrderLineView{
			SKUID:    item.SKUID,
			Quantity: item.Quantity,
			Price:    item.Price,
			Amount:   item.Price * float64(item.Quantity),
		})
	}

	return view
}
