package handlers

import (
	"log/slog"
	"net/http"

	"github.com/freshmart/storefront/internal/api/middleware"
	"github.com/freshmart/storefront/internal/cart"
	"github.com/freshmart/storefront/internal/errors"
	"github.com/freshmart/storefront/internal/models"
	service "github.com/freshmart/storefront/internal/services"
	"github.com/freshmart/storefront/internal/utils"
	"github.com/freshmart/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
)

// Checkout requires an authenticated account: the committed order needs a
// durable cart identity, so the cookie backend never reaches this handler.
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	redisClient     *redis.Client
	validator       *validator.Validate
}

func NewCheckoutHandler(checkoutService *service.CheckoutService, redisClient *redis.Client) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		redisClient:     redisClient,
		validator:       validator.New(),
	}
}

// Preview godoc
//	@Summary		Build an order preview
//	@Description	Assembles the confirmation-page data for the listed products. Passing count switches to the buy-now path.
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			preview	body		models.PreviewRequest	true	"Products to preview (count = buy-now quantity)"
//	@Success		200		{object}	models.OrderPreview		"Order preview"
//	@Failure		400		{object}	response.ErrorResponse	"Validation error or product not in cart"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404		{object}	response.ErrorResponse	"Product not found"
//	@Failure		409		{object}	response.ErrorResponse	"Insufficient stock"
//	@Security		BearerAuth
//	@Router			/checkout/preview [post]
func (h *CheckoutHandler) Preview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			logger.Warn("Unauthorized checkout preview attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.PreviewRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid preview input")
			return
		}

		store := cart.NewRedisStore(h.redisClient, claims.UserID)

		preview, err := h.checkoutService.BuildPreview(r.Context(), claims.UserID, store, &req)
		if err != nil {
			logger.Error("Failed to build order preview", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, preview)
	}
}

// Commit godoc
//	@Summary		Commit an order
//	@Description	Reserves stock and persists the order atomically; the committed products are cleared from the cart.
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			order	body		models.CommitOrderRequest	true	"Address, payment method and product list"
//	@Success		201		{object}	models.CommitOrderResponse	"Committed order"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error, bad address or payment method"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		404		{object}	response.ErrorResponse		"Product not found"
//	@Failure		409		{object}	response.ErrorResponse		"Insufficient stock"
//	@Failure		500		{object}	response.ErrorResponse		"Commit failed"
//	@Security		BearerAuth
//	@Router			/checkout/commit [post]
func (h *CheckoutHandler) Commit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			logger.Warn("Unauthorized order commit attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.CommitOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid commit order input")
			return
		}

		store := cart.NewRedisStore(h.redisClient, claims.UserID)

		result, err := h.checkoutService.CommitOrder(r.Context(), claims.UserID, store, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, result)
	}
}
