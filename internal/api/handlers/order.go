package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/freshmart/storefront/internal/api/middleware"
	"github.com/freshmart/storefront/internal/errors"
	service "github.com/freshmart/storefront/internal/services"
	"github.com/freshmart/storefront/internal/utils/response"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ListOrders godoc
//	@Summary		List the account's orders
//	@Description	Paginated order history, newest first. Out-of-range pages fall back to page 1.
//	@Tags			Orders
//	@Produce		json
//	@Param			page	path		int						true	"Page number"
//	@Success		200		{object}	models.PaginatedResponse	"Orders for the page"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders/{page} [get]
func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			logger.Warn("Unauthorized order list attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		// A garbled page number is treated like an out-of-range one and
		// clamps to the first page.
		page, err := strconv.Atoi(r.PathValue("page"))
		if err != nil {
			page = 1
		}

		orders, err := h.orderService.ListOrders(r.Context(), claims.UserID, page)
		if err != nil {
			logger.Error("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, orders)
	}
}
